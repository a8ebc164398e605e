package stepcounter

// PeakDetector 在垂直加速度信号中寻找局部极大值，
// 作为独立于分类器的旁路确认信号。
// 每个窗口折算成一个 "垂直加速度方差" 值压入环形缓冲区，
// 缓冲区中心位置的值高于最小峰高、且严格大于 ±minPeakDistance
// 范围内的所有邻居时，判定出现一个峰。
type PeakDetector struct {
	cfg *Config

	// PeakBuffer: 最近 N 个垂直加速度方差值
	buf    []float64
	pos    int
	filled int
}

// NewPeakDetector 创建峰值检测器
func NewPeakDetector(cfg *Config) *PeakDetector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &PeakDetector{
		cfg: cfg,
		buf: make([]float64, cfg.Peak.BufferSize),
	}
}

// Evaluate 压入一个窗口的垂直加速度方差 (Window.VerticalVariance)，
// 返回是否检测到峰。方差由调用方算好传入，引擎同时要把同一个值
// 交给调试器，不必算两遍。
// 纯咨询性输出：只用于给边界分类得分做旁证，不单独确认步伐。
func (p *PeakDetector) Evaluate(v float64) bool {
	p.push(v)
	return p.hasPeak()
}

func (p *PeakDetector) push(v float64) {
	p.buf[p.pos] = v
	p.pos = (p.pos + 1) % len(p.buf)
	if p.filled < len(p.buf) {
		p.filled++
	}
}

// hasPeak 检查缓冲区中心是否为合格的峰
func (p *PeakDetector) hasPeak() bool {
	// 缓冲区没满之前不判峰，避免用零值垫底制造假峰
	if p.filled < len(p.buf) {
		return false
	}

	size := len(p.buf)
	center := size / 2
	dist := p.cfg.Peak.MinPeakDistance

	// 环形缓冲区按插入顺序取中心值：pos 指向最老的元素
	at := func(i int) float64 {
		return p.buf[(p.pos+i)%size]
	}

	peak := at(center)
	if peak < p.cfg.Peak.MinPeakHeight {
		return false
	}

	// 中心必须严格大于 ±dist 内的所有邻居
	for off := -dist; off <= dist; off++ {
		if off == 0 {
			continue
		}
		i := center + off
		if i < 0 || i >= size {
			continue
		}
		if at(i) >= peak {
			return false
		}
	}
	return true
}
