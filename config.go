package stepcounter

import "time"

// Config 结构体用于集中管理步数引擎的所有可调参数和阈值
type Config struct {
	// --- 采样窗口 (SampleWindow) ---
	// 传感器按固定频率推送 6 通道样本，凑满一个窗口后整体评估一次
	Window struct {
		Size       int     // 窗口大小 (样本数)。50 个样本在 50Hz 下约等于 1 秒
		SampleRate float64 // 标称采样率 (Hz)，用于节奏估计和回放节拍
	}

	// --- 运动门控 (MotionGate) ---
	// 静止状态下直接短路，不运行分类器，省电且抑制误报
	Gate struct {
		MotionThreshold float64 // 运动强度阈值 (三轴加速度方差之和的滑动均值)。0.008 为实测经验值，单位随传感器量纲
		IntensityRing   int     // 强度滑动均值的环形缓冲区大小 (5~10)
		AutoThreshold   bool    // 是否启用自动阈值校准 (根据强度动态范围浮动阈值)
		AutoDecayRate   float64 // 自动校准的包络衰减系数 (0.0~1.0)，越接近 1 峰值保持越久
		AutoMinRange    float64 // 最小动态范围，小于此值视为完全静止 (静噪)
	}

	// --- 峰值检测 (PeakDetector) ---
	// 独立于分类器的旁路确认信号
	Peak struct {
		BufferSize      int     // 峰值缓冲区大小 (15)
		MinPeakHeight   float64 // 峰值最小高度 (残差方差)
		MinPeakDistance int     // 峰值与邻居比较的半径 (±6)
	}

	// --- 分类决策 (DecisionDebouncer) ---
	Decision struct {
		Threshold           float64       // 分类器概率阈值。大于此值计一次 "高读数"
		HysteresisRatio     float64       // 迟滞系数。概率低于 Threshold*此值 才清零连续计数，防止单帧噪声打断
		RequiredConsecutive int           // 确认一步所需的连续高读数次数
		CorroborationRatio  float64       // 旁路确认系数。峰值存在且概率 > Threshold*此值 时也可确认
		RefractoryPeriod    time.Duration // 不应期。两步之间的最小间隔，对应人类步频的生理下限
	}

	// --- 会话记账 (SessionAccountant) ---
	Session struct {
		CheckpointSteps    int           // 每累计多少步触发一次检查点落库。历史上两个版本分别用 10 和 50，这里取中间值并暴露为配置
		CheckpointInterval time.Duration // 检查点的时间间隔兜底 (步数没到但时间到了也落一次)
	}

	// --- 节奏监测 (CadenceMonitor) ---
	// 后台 FFT 估计步频，仅作观测输出，不参与计步判定
	Cadence struct {
		Enabled        bool          // 是否启用后台节奏监测
		FFTSize        int           // FFT 点数 (256)，决定频率分辨率
		UpdateInterval time.Duration // 分析周期
		MinFrequency   float64       // 步频搜索下限 (Hz)。0.5Hz = 30 步/分
		MaxFrequency   float64       // 步频搜索上限 (Hz)。3.5Hz = 210 步/分
		RequiredSNR    float64       // 触发节奏更新所需的最小信噪比 (线性值)
		Alpha          float64       // 节奏平滑的学习率 (0.0~1.0)
	}

	// --- 预滤波 ---
	Filter struct {
		Enabled bool    // 是否对加速度通道做低通预滤波
		Order   int     // 巴特沃斯阶数
		Cutoff  float64 // 截止频率 (Hz)。步行能量集中在 5Hz 以下
	}
}

// DefaultConfig 返回一个包含当前最佳实践的默认配置
func DefaultConfig() *Config {
	cfg := &Config{}

	// --- 采样窗口 ---
	cfg.Window.Size = 50
	cfg.Window.SampleRate = 50.0

	// --- 运动门控 ---
	cfg.Gate.MotionThreshold = 0.008
	cfg.Gate.IntensityRing = 8
	cfg.Gate.AutoThreshold = false
	cfg.Gate.AutoDecayRate = 0.98
	cfg.Gate.AutoMinRange = 0.004

	// --- 峰值检测 ---
	cfg.Peak.BufferSize = 15
	cfg.Peak.MinPeakHeight = 0.01
	cfg.Peak.MinPeakDistance = 6

	// --- 分类决策 ---
	cfg.Decision.Threshold = 0.18
	cfg.Decision.HysteresisRatio = 0.8
	// 确认会清零连续计数，默认 1 才能做到 "每个强窗口计一步"，
	// 步间抑制交给不应期。调大可以换取更强的噪声抑制
	cfg.Decision.RequiredConsecutive = 1
	cfg.Decision.CorroborationRatio = 0.9
	cfg.Decision.RefractoryPeriod = 600 * time.Millisecond

	// --- 会话记账 ---
	cfg.Session.CheckpointSteps = 25
	cfg.Session.CheckpointInterval = 2 * time.Minute

	// --- 节奏监测 ---
	cfg.Cadence.Enabled = true
	cfg.Cadence.FFTSize = 256
	cfg.Cadence.UpdateInterval = 2 * time.Second
	cfg.Cadence.MinFrequency = 0.5
	cfg.Cadence.MaxFrequency = 3.5
	cfg.Cadence.RequiredSNR = 8.0
	cfg.Cadence.Alpha = 0.2

	// --- 预滤波 ---
	cfg.Filter.Enabled = false
	cfg.Filter.Order = 2
	cfg.Filter.Cutoff = 5.0

	return cfg
}
