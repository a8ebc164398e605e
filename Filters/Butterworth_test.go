package Filters

import (
	"math"
	"testing"
)

func TestButterworthDCGain(t *testing.T) {
	f := NewButterworthLowpass(2, 50, 5)

	// 低通滤波器对直流 (重力分量) 的增益必须是 1
	var out float64
	for i := 0; i < 500; i++ {
		out = f.Process(1.0)
	}
	if math.Abs(out-1.0) > 1e-3 {
		t.Errorf("DC output = %v, want 1.0", out)
	}
}

func TestButterworthAttenuatesHighFrequency(t *testing.T) {
	f := NewButterworthLowpass(2, 50, 5)

	// 25Hz (奈奎斯特附近的抖动) 必须被强烈衰减
	var maxOut float64
	for i := 0; i < 500; i++ {
		in := 1.0
		if i%2 == 1 {
			in = -1.0
		}
		out := math.Abs(f.Process(in))
		if i > 100 && out > maxOut {
			maxOut = out
		}
	}
	if maxOut > 0.1 {
		t.Errorf("25Hz residual amplitude = %v, want < 0.1", maxOut)
	}
}

func TestButterworthPassesWalkBand(t *testing.T) {
	f := NewButterworthLowpass(2, 50, 5)

	// 2Hz 步频分量应该基本无损通过
	var maxOut float64
	for i := 0; i < 500; i++ {
		in := math.Sin(2 * math.Pi * 2.0 * float64(i) / 50)
		out := math.Abs(f.Process(in))
		if i > 100 && out > maxOut {
			maxOut = out
		}
	}
	if maxOut < 0.8 {
		t.Errorf("2Hz peak amplitude = %v, want > 0.8", maxOut)
	}
}

func TestButterworthOddOrderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic for odd filter order")
		}
	}()
	NewButterworthLowpass(3, 50, 5)
}

func TestAccelFilterIndependentChannels(t *testing.T) {
	f := NewAccelFilter(2, 50, 5)

	// 三条链互不串扰：只激励 X，Y/Z 输出保持 0
	var x, y, z float64
	for i := 0; i < 100; i++ {
		x, y, z = f.Process(1.0, 0, 0)
	}
	if y != 0 || z != 0 {
		t.Errorf("cross-talk: y=%v z=%v, want 0", y, z)
	}
	if math.Abs(x-1.0) > 1e-2 {
		t.Errorf("x = %v, want ~1.0", x)
	}
}
