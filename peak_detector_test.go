package stepcounter

import "testing"

func TestPeakRequiresFullBuffer(t *testing.T) {
	p := NewPeakDetector(DefaultConfig())

	// 缓冲区没满之前绝不判峰：零值垫底会制造假峰
	for i := 0; i < 14; i++ {
		if p.Evaluate(0.05) {
			t.Fatalf("peak reported after only %d windows", i+1)
		}
	}
}

func TestPeakDetectedAtCenter(t *testing.T) {
	p := NewPeakDetector(DefaultConfig())

	// 15 个方差值，插入序第 8 个 (缓冲区中心) 明显高于邻居
	variances := make([]float64, 15)
	for i := range variances {
		variances[i] = 0.02
	}
	variances[7] = 0.05

	var got bool
	for _, v := range variances {
		got = p.Evaluate(v)
	}
	if !got {
		t.Error("no peak reported for a clear center maximum")
	}
}

func TestPeakBelowMinHeightRejected(t *testing.T) {
	p := NewPeakDetector(DefaultConfig())

	// 形状上是峰，但低于最小峰高 (0.01)
	for i := 0; i < 15; i++ {
		v := 0.004
		if i == 7 {
			v = 0.008
		}
		if p.Evaluate(v) {
			t.Error("sub-threshold bump reported as a peak")
		}
	}
}

func TestPeakPlateauRejected(t *testing.T) {
	p := NewPeakDetector(DefaultConfig())

	// 中心与邻居等高 (平台)：必须严格大于才算峰
	var got bool
	for i := 0; i < 15; i++ {
		v := 0.02
		if i == 7 || i == 8 {
			v = 0.05
		}
		got = p.Evaluate(v)
	}
	if got {
		t.Error("plateau reported as a peak, want strict inequality")
	}
}
