package stepcounter

import "testing"

func TestGateStationaryOnFlatSignal(t *testing.T) {
	g := NewMotionGate(DefaultConfig())

	for i := 0; i < 10; i++ {
		if state := g.Evaluate(flatWindow(50, 1.0)); state != Stationary {
			t.Fatalf("window %d: state = %s, want Stationary for zero-variance signal", i, state)
		}
	}
	if g.Intensity() != 0 {
		t.Errorf("Intensity() = %v, want 0", g.Intensity())
	}
}

func TestGateMovingOnWalkSignal(t *testing.T) {
	g := NewMotionGate(DefaultConfig())

	// ±0.3 摆动的方差是 0.09，远超 0.008 阈值，第一个窗口就应判运动
	if state := g.Evaluate(oscillatingWindow(50, 0.3)); state != Moving {
		t.Fatalf("state = %s, want Moving", state)
	}
	if g.State() != Moving {
		t.Errorf("State() = %s, want Moving", g.State())
	}
}

func TestGateRecoversToStationary(t *testing.T) {
	cfg := DefaultConfig()
	g := NewMotionGate(cfg)

	for i := 0; i < cfg.Gate.IntensityRing; i++ {
		g.Evaluate(oscillatingWindow(50, 0.3))
	}
	if g.State() != Moving {
		t.Fatal("gate did not enter Moving")
	}

	// 滑动均值：环形缓冲区被静止强度填满后回到静止
	for i := 0; i < cfg.Gate.IntensityRing; i++ {
		g.Evaluate(flatWindow(50, 1.0))
	}
	if g.State() != Stationary {
		t.Errorf("State() = %s after flat windows, want Stationary", g.State())
	}
}

func TestGateAutoThresholdSquelch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gate.AutoThreshold = true
	g := NewMotionGate(cfg)

	// 强度恒定不变时动态范围必然塌缩，自动校准进入静噪，
	// 哪怕绝对强度远高于固定阈值也强制判静止
	var state MotionState
	for i := 0; i < 300; i++ {
		state = g.Evaluate(oscillatingWindow(50, 0.3))
	}
	if state != Stationary {
		t.Errorf("state = %s after 300 constant-intensity windows, want Stationary (squelch)", state)
	}
}
