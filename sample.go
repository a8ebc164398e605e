package stepcounter

import "math"

// NumChannels 每个样本的通道数 (三轴加速度 + 三轴陀螺仪)
const NumChannels = 6

// Sample 是一次传感器读数，采集后不可变
type Sample struct {
	AccelX, AccelY, AccelZ float64
	GyroX, GyroY, GyroZ    float64
}

// Channels 按固定顺序返回 6 个通道值
func (s Sample) Channels() [NumChannels]float64 {
	return [NumChannels]float64{s.AccelX, s.AccelY, s.AccelZ, s.GyroX, s.GyroY, s.GyroZ}
}

// Window 是一个完整的评估单元：固定长度的样本批次
// 传给 MotionGate / PeakDetector / 分类器时长度必须正好等于配置的窗口大小
type Window struct {
	Samples []Sample
}

// Len 返回窗口内的样本数
func (w *Window) Len() int {
	return len(w.Samples)
}

// AccelVariance 计算三个加速度通道各自的方差
func (w *Window) AccelVariance() (vx, vy, vz float64) {
	n := float64(len(w.Samples))
	if n == 0 {
		return 0, 0, 0
	}

	var mx, my, mz float64
	for _, s := range w.Samples {
		mx += s.AccelX
		my += s.AccelY
		mz += s.AccelZ
	}
	mx /= n
	my /= n
	mz /= n

	for _, s := range w.Samples {
		dx := s.AccelX - mx
		dy := s.AccelY - my
		dz := s.AccelZ - mz
		vx += dx * dx
		vy += dy * dy
		vz += dz * dz
	}
	return vx / n, vy / n, vz / n
}

// VerticalVariance 粗略的 "垂直加速度" 强度：
// 1. 每个样本算三轴合成幅值 sqrt(x²+y²+z²)
// 2. 减去窗口均值 (简易重力消除)
// 3. 残差的方差即为本窗口的垂直加速度强度
func (w *Window) VerticalVariance() float64 {
	n := float64(len(w.Samples))
	if n == 0 {
		return 0
	}

	mags := make([]float64, 0, len(w.Samples))
	var mean float64
	for _, s := range w.Samples {
		m := math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
		mags = append(mags, m)
		mean += m
	}
	mean /= n

	var variance float64
	for _, m := range mags {
		d := m - mean
		variance += d * d
	}
	return variance / n
}

// Flatten 把窗口展开为 size*6 的一维向量 (样本优先, 通道次序固定)，供模型推理使用
func (w *Window) Flatten() []float64 {
	out := make([]float64, 0, len(w.Samples)*NumChannels)
	for _, s := range w.Samples {
		ch := s.Channels()
		out = append(out, ch[:]...)
	}
	return out
}

// SampleWindow 把连续的样本流切成互不重叠的完整窗口
//
// 策略说明：这里采用离散批次 (每凑满 Size 个样本产出一个窗口后清空)，
// 而不是滑动窗口。原始数据源的 "窗口就绪" 回调就是这个语义，
// 且离散批次保证每个样本只被分类器评估一次。
type SampleWindow struct {
	size int
	buf  []Sample
}

// NewSampleWindow 创建批次缓冲区
func NewSampleWindow(size int) *SampleWindow {
	if size <= 0 {
		size = DefaultConfig().Window.Size
	}
	return &SampleWindow{
		size: size,
		buf:  make([]Sample, 0, size),
	}
}

// Push 压入一个样本。凑满一个批次时返回完整窗口，否则返回 nil
func (sw *SampleWindow) Push(s Sample) *Window {
	sw.buf = append(sw.buf, s)
	if len(sw.buf) < sw.size {
		return nil
	}

	// 批次完成：移交所有权并重新开始累积
	w := &Window{Samples: sw.buf}
	sw.buf = make([]Sample, 0, sw.size)
	return w
}

// Pending 返回当前未凑满批次的样本数
func (sw *SampleWindow) Pending() int {
	return len(sw.buf)
}

// Reset 丢弃未凑满的样本 (会话停止时调用，避免残留样本泄漏进下一次会话)
func (sw *SampleWindow) Reset() {
	sw.buf = sw.buf[:0]
}
