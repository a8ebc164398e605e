package stepcounter

import "time"

// DecisionDebouncer 是引擎的核心判定器：
// 把分类器概率、峰值旁证、连续高读数计数和不应期计时
// 合成为每个窗口一个 "是否确认一步" 的最终决定。
//
// 这个组件从不报错：输入再噪也只会输出 "无步"，不会中断链路。
type DecisionDebouncer struct {
	cfg *Config

	// DebounceState
	lastStepTime     time.Time // 上一次确认步伐的时刻，只有确认时才重置不应期时钟
	consecutiveHighs int       // 连续高读数计数

	// 时钟注入点，测试时可替换
	now func() time.Time
}

// NewDecisionDebouncer 创建判定器
func NewDecisionDebouncer(cfg *Config) *DecisionDebouncer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &DecisionDebouncer{
		cfg: cfg,
		now: time.Now,
	}
}

// Evaluate 对一个已通过运动门控的窗口做判定。
// probability: 分类器输出; peak: 峰值检测旁证
// 返回 true 表示确认一步。
func (d *DecisionDebouncer) Evaluate(probability float64, peak bool) bool {
	threshold := d.cfg.Decision.Threshold

	// 1. 更新连续高读数计数
	// 迟滞：只有概率跌到阈值的 HysteresisRatio 倍以下才清零。
	// 单帧噪声把概率压到略低于阈值时不应该取消一整段接近确认的序列
	if probability > threshold {
		d.consecutiveHighs++
	} else if probability < threshold*d.cfg.Decision.HysteresisRatio {
		d.consecutiveHighs = 0
	}

	// 2. 不应期检查
	// 人类步频有生理上限，两步之间必须间隔 RefractoryPeriod 以上
	now := d.now()
	refractoryElapsed := d.lastStepTime.IsZero() ||
		now.Sub(d.lastStepTime) > d.cfg.Decision.RefractoryPeriod

	if !refractoryElapsed {
		return false
	}

	// 3. 确认判定
	// 主路径：连续高读数达标
	// 旁路：分类得分处于边界但峰值检测给出旁证
	primary := d.consecutiveHighs >= d.cfg.Decision.RequiredConsecutive
	corroborated := peak && probability > threshold*d.cfg.Decision.CorroborationRatio

	if !primary && !corroborated {
		return false
	}

	// 4. 确认：重置不应期时钟和连续计数
	d.lastStepTime = now
	d.consecutiveHighs = 0
	return true
}

// SetClock 替换时钟源。
// 离线回放 (benchmark / 录制文件快放) 跑得比实时快，
// 需要按回放进度推进的虚拟时钟，否则不应期会吞掉几乎所有步伐
func (d *DecisionDebouncer) SetClock(now func() time.Time) {
	if now != nil {
		d.now = now
	}
}

// Reset 清空去抖状态 (会话停止时调用)
func (d *DecisionDebouncer) Reset() {
	d.lastStepTime = time.Time{}
	d.consecutiveHighs = 0
}

// ConsecutiveHighs 返回当前连续高读数计数 (仅观测用)
func (d *DecisionDebouncer) ConsecutiveHighs() int {
	return d.consecutiveHighs
}
