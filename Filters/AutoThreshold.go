package Filters

// AutoThresholder 实现双路包络追踪，用于生成动态的运动门控阈值。
// 不同用户、不同机型的传感器底噪差异很大，固定阈值容易把口袋里的
// 轻微晃动误判为运动；这里根据观察到的强度动态范围浮动阈值，
// 并在动态范围塌缩时直接静噪。
type AutoThresholder struct {
	// 状态变量
	maxLevel float64 // 追踪运动强度顶部的包络
	minLevel float64 // 追踪底噪的基准

	// 配置参数
	decayRate float64 // 衰减系数 (0.0 ~ 1.0)，控制 max 下降和 min 上升的速度
	minRange  float64 // 最小动态范围，小于此值视为完全静止 (静噪开启)
}

// NewAutoThresholder 初始化追踪器
// decayRate: 推荐 0.98 (窗口级更新，约 1Hz)
// minRange: 推荐 0.004 (视传感器量纲而定)
func NewAutoThresholder(decayRate, minRange float64) *AutoThresholder {
	return &AutoThresholder{
		decayRate: decayRate,
		minRange:  minRange,
	}
}

// Update 更新追踪器状态并计算当前的门控阈值。
// 输入 intensity: 本窗口的运动强度 (三轴加速度方差之和)
// 输出 threshold: 动态门控阈值; active: false 表示静噪 (强制判定静止)
func (at *AutoThresholder) Update(intensity float64) (threshold float64, active bool) {
	// 1. Max Level 追踪 (Fast Attack, Slow Decay)
	// 当前强度大于峰值则立即更新，否则按系数衰减，适应强度起伏
	if intensity > at.maxLevel {
		at.maxLevel = intensity
	} else {
		at.maxLevel *= at.decayRate
	}

	// 2. Min Level 追踪 (Fast Attack Down, Slow Recovery Up)
	// 低于底噪基准立即压下去，否则缓慢向 maxLevel 漂浮
	if intensity < at.minLevel {
		at.minLevel = intensity
	} else {
		at.minLevel += (at.maxLevel - at.minLevel) * (1.0 - at.decayRate)
	}

	// 防止浮点漂移导致的异常交叉
	if at.minLevel > at.maxLevel {
		at.minLevel = at.maxLevel
	}

	// 3. 计算动态范围
	dynRange := at.maxLevel - at.minLevel

	// 4. 静噪逻辑
	// 动态范围太小说明设备长时间纹丝不动，任何阈值都没有意义
	if dynRange < at.minRange {
		return 0, false
	}

	// 5. 阈值取底噪之上动态范围的 30%
	return at.minLevel + dynRange*0.3, true
}
