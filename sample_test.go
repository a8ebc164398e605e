package stepcounter

import (
	"math"
	"testing"
)

// oscillatingWindow 生成 AccelZ 在 1±amp 间交替的窗口。
// 加速度 Z 方差和垂直残差方差都正好等于 amp² ，方便断言
func oscillatingWindow(size int, amp float64) *Window {
	samples := make([]Sample, size)
	for i := range samples {
		z := 1.0 + amp
		if i%2 == 1 {
			z = 1.0 - amp
		}
		samples[i] = Sample{AccelZ: z}
	}
	return &Window{Samples: samples}
}

// flatWindow 生成所有样本完全相同的窗口 (零方差，静止)
func flatWindow(size int, z float64) *Window {
	samples := make([]Sample, size)
	for i := range samples {
		samples[i] = Sample{AccelZ: z}
	}
	return &Window{Samples: samples}
}

func TestSampleWindowBatching(t *testing.T) {
	sw := NewSampleWindow(50)

	// 前 49 个样本不产出窗口
	for i := 0; i < 49; i++ {
		if w := sw.Push(Sample{AccelX: float64(i)}); w != nil {
			t.Fatalf("got a window after %d samples, want none before 50", i+1)
		}
	}
	if sw.Pending() != 49 {
		t.Errorf("Pending() = %d, want 49", sw.Pending())
	}

	// 第 50 个样本产出完整窗口，缓冲区清空重新累积
	w := sw.Push(Sample{AccelX: 49})
	if w == nil {
		t.Fatal("no window after 50 samples")
	}
	if w.Len() != 50 {
		t.Errorf("window length = %d, want 50", w.Len())
	}
	if sw.Pending() != 0 {
		t.Errorf("Pending() after batch = %d, want 0", sw.Pending())
	}

	// 批次互不重叠：下一个窗口从全新样本开始
	if w.Samples[0].AccelX != 0 || w.Samples[49].AccelX != 49 {
		t.Errorf("window samples out of order: first %v last %v", w.Samples[0].AccelX, w.Samples[49].AccelX)
	}
	sw.Push(Sample{AccelX: 100})
	if sw.Pending() != 1 {
		t.Errorf("Pending() after new sample = %d, want 1", sw.Pending())
	}
}

func TestSampleWindowReset(t *testing.T) {
	sw := NewSampleWindow(50)
	for i := 0; i < 30; i++ {
		sw.Push(Sample{})
	}

	// Reset 丢弃残留样本，防止泄漏进下一次会话
	sw.Reset()
	if sw.Pending() != 0 {
		t.Errorf("Pending() after Reset = %d, want 0", sw.Pending())
	}

	for i := 0; i < 49; i++ {
		if w := sw.Push(Sample{}); w != nil {
			t.Fatal("stale samples leaked into the new batch")
		}
	}
	if w := sw.Push(Sample{}); w == nil {
		t.Fatal("no window after 50 fresh samples")
	}
}

func TestWindowFlattenOrder(t *testing.T) {
	w := &Window{Samples: []Sample{
		{AccelX: 1, AccelY: 2, AccelZ: 3, GyroX: 4, GyroY: 5, GyroZ: 6},
		{AccelX: 7, AccelY: 8, AccelZ: 9, GyroX: 10, GyroY: 11, GyroZ: 12},
	}}

	flat := w.Flatten()
	want := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if len(flat) != len(want) {
		t.Fatalf("Flatten length = %d, want %d", len(flat), len(want))
	}
	for i, v := range want {
		if flat[i] != v {
			t.Errorf("Flatten[%d] = %v, want %v (sample-major, fixed channel order)", i, flat[i], v)
		}
	}
}

func TestWindowAccelVariance(t *testing.T) {
	w := oscillatingWindow(50, 0.3)
	vx, vy, vz := w.AccelVariance()

	if vx != 0 || vy != 0 {
		t.Errorf("vx=%v vy=%v, want 0 for untouched axes", vx, vy)
	}
	if math.Abs(vz-0.09) > 1e-9 {
		t.Errorf("vz = %v, want 0.09 for ±0.3 oscillation", vz)
	}
}

func TestWindowVerticalVariance(t *testing.T) {
	// 幅值在 1±0.3 间交替：去均值后的残差方差为 0.09
	w := oscillatingWindow(50, 0.3)
	if v := w.VerticalVariance(); math.Abs(v-0.09) > 1e-9 {
		t.Errorf("VerticalVariance = %v, want 0.09", v)
	}

	if v := (&Window{}).VerticalVariance(); v != 0 {
		t.Errorf("VerticalVariance of empty window = %v, want 0", v)
	}

	// 恒定幅值：零残差
	if v := flatWindow(50, 1.0).VerticalVariance(); v != 0 {
		t.Errorf("VerticalVariance of flat window = %v, want 0", v)
	}
}
