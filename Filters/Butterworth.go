package Filters

import "math"

// BiquadFilter 表示一个二阶 IIR 滤波器节
// 用于级联实现高阶滤波器
type BiquadFilter struct {
	// 系数
	a0, a1, a2, b1, b2 float64
	// 状态 (延迟线)
	z1, z2 float64
}

// Process 处理单个采样点
func (f *BiquadFilter) Process(in float64) float64 {
	out := in*f.a0 + f.z1
	f.z1 = in*f.a1 - out*f.b1 + f.z2
	f.z2 = in*f.a2 - out*f.b2
	return out
}

// ButterworthFilter 表示一个由多个 Biquad 节级联组成的巴特沃斯低通滤波器
// 用于在开窗之前滤掉加速度通道里的高频抖动 (步行能量集中在 5Hz 以下)
type ButterworthFilter struct {
	sections []*BiquadFilter
}

// NewButterworthLowpass 创建一个新的 N 阶巴特沃斯低通滤波器
// order: 滤波器阶数 (必须是偶数)
// sampleRate: 采样率 (Hz)
// cutoffFreq: 截止频率 (Hz)
func NewButterworthLowpass(order int, sampleRate, cutoffFreq float64) *ButterworthFilter {
	if order%2 != 0 {
		panic("Butterworth filter order must be even")
	}

	// 限制截止频率以防止 Nyquist 频率附近的数值不稳定
	if cutoffFreq >= sampleRate*0.499 {
		cutoffFreq = sampleRate * 0.499
	}

	sections := make([]*BiquadFilter, order/2)

	// 使用双线性变换从模拟原型计算数字滤波器系数
	// 1. 预畸变截止频率
	w := 2.0 * sampleRate * math.Tan(math.Pi*cutoffFreq/sampleRate)

	// 2. 计算每个二阶节的系数 (级联顺序: Low Q -> High Q)
	for i := 0; i < order/2; i++ {
		poleIdx := (order/2 - 1) - i

		// 极点角度
		theta := math.Pi * (2.0*float64(poleIdx) + 1.0) / (2.0 * float64(order))

		// 模拟原型极点
		pRe := -w * math.Sin(theta)
		pIm := w * math.Cos(theta)

		// 双线性变换
		alpha := 4.0*sampleRate*sampleRate - 4.0*sampleRate*pRe + pRe*pRe + pIm*pIm

		b1 := (-8.0*sampleRate*sampleRate + 2.0*(pRe*pRe+pIm*pIm)) / alpha
		b2 := (4.0*sampleRate*sampleRate + 4.0*sampleRate*pRe + pRe*pRe + pIm*pIm) / alpha

		a0 := (w * w) / alpha
		a1 := (2.0 * w * w) / alpha
		a2 := (w * w) / alpha

		sections[i] = &BiquadFilter{
			a0: a0, a1: a1, a2: a2,
			b1: b1, b2: b2,
		}
	}

	return &ButterworthFilter{sections: sections}
}

// Process 处理单个采样点，通过所有级联节
func (f *ButterworthFilter) Process(in float64) float64 {
	out := in
	for _, s := range f.sections {
		out = s.Process(out)
	}
	return out
}

// AccelFilter 对三个加速度通道各自维护一条独立的滤波链
// 陀螺仪通道不滤波 (分类模型在原始陀螺仪数据上训练)
type AccelFilter struct {
	fx, fy, fz *ButterworthFilter
}

// NewAccelFilter 创建三通道加速度低通滤波器
func NewAccelFilter(order int, sampleRate, cutoffFreq float64) *AccelFilter {
	return &AccelFilter{
		fx: NewButterworthLowpass(order, sampleRate, cutoffFreq),
		fy: NewButterworthLowpass(order, sampleRate, cutoffFreq),
		fz: NewButterworthLowpass(order, sampleRate, cutoffFreq),
	}
}

// Process 处理一组三轴加速度读数
func (f *AccelFilter) Process(ax, ay, az float64) (float64, float64, float64) {
	return f.fx.Process(ax), f.fy.Process(ay), f.fz.Process(az)
}
