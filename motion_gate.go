package stepcounter

import (
	"fmt"

	"github.com/Yasindu20/Fitness-Warrior-sub000/Filters"
)

// MotionState 表示设备的运动状态
type MotionState int

const (
	// Stationary 静止：本窗口不运行分类器、峰值检测和去抖逻辑
	Stationary MotionState = iota
	// Moving 运动中
	Moving
)

func (m MotionState) String() string {
	if m == Moving {
		return "Moving"
	}
	return "Stationary"
}

// MotionGate 运动门控：从窗口计算运动强度，判断设备是否在运动。
// 静止时整条推理链路短路，既省电也抑制静止场景下的误报。
type MotionGate struct {
	cfg *Config

	// 强度滑动均值的环形缓冲区
	ring    []float64
	ringPos int
	ringLen int

	// 自动阈值校准 (可选)
	auto *Filters.AutoThresholder

	// 当前稳定状态
	state MotionState
}

// NewMotionGate 创建门控实例
func NewMotionGate(cfg *Config) *MotionGate {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	g := &MotionGate{
		cfg:  cfg,
		ring: make([]float64, cfg.Gate.IntensityRing),
	}
	if cfg.Gate.AutoThreshold {
		g.auto = Filters.NewAutoThresholder(cfg.Gate.AutoDecayRate, cfg.Gate.AutoMinRange)
	}
	return g
}

// Evaluate 评估一个窗口，返回运动状态
// 算法：三轴加速度各自的方差求和得到 motionIntensity，
// 压入环形缓冲区后取算术平均，与阈值比较。
// 除了缓冲区更新之外没有副作用，状态切换只打印日志。
func (g *MotionGate) Evaluate(w *Window) MotionState {
	// 1. 运动强度 = 三轴加速度方差之和
	vx, vy, vz := w.AccelVariance()
	intensity := vx + vy + vz

	// 2. 压入环形缓冲区，计算滑动均值
	g.ring[g.ringPos] = intensity
	g.ringPos = (g.ringPos + 1) % len(g.ring)
	if g.ringLen < len(g.ring) {
		g.ringLen++
	}

	var sum float64
	for i := 0; i < g.ringLen; i++ {
		sum += g.ring[i]
	}
	mean := sum / float64(g.ringLen)

	// 3. 阈值比较 (固定阈值或自动校准阈值)
	threshold := g.cfg.Gate.MotionThreshold
	if g.auto != nil {
		t, active := g.auto.Update(intensity)
		if !active {
			// 静噪：动态范围塌缩，强制静止
			g.setState(Stationary, mean, threshold)
			return Stationary
		}
		threshold = t
	}

	if mean > threshold {
		g.setState(Moving, mean, threshold)
	} else {
		g.setState(Stationary, mean, threshold)
	}
	return g.state
}

// Intensity 返回最近一次评估的运动强度 (环形缓冲区最新值)
func (g *MotionGate) Intensity() float64 {
	idx := (g.ringPos - 1 + len(g.ring)) % len(g.ring)
	return g.ring[idx]
}

// State 返回当前运动状态
func (g *MotionGate) State() MotionState {
	return g.state
}

func (g *MotionGate) setState(s MotionState, mean, threshold float64) {
	if s != g.state {
		fmt.Printf("[GATE] %s -> %s (mean: %.5f, thresh: %.5f)\n", g.state, s, mean, threshold)
		g.state = s
	}
}
