package Filters

import "testing"

func TestAutoThresholderSquelchWhenStill(t *testing.T) {
	at := NewAutoThresholder(0.98, 0.004)

	// 纹丝不动：动态范围起不来，一直静噪
	var active bool
	for i := 0; i < 50; i++ {
		_, active = at.Update(0.0001)
	}
	if active {
		t.Error("thresholder active on a dead-still signal")
	}
}

func TestAutoThresholderTracksActivity(t *testing.T) {
	at := NewAutoThresholder(0.98, 0.004)

	// 强弱交替的运动强度撑开动态范围
	var threshold float64
	var active bool
	for i := 0; i < 50; i++ {
		v := 0.002
		if i%2 == 0 {
			v = 0.09
		}
		threshold, active = at.Update(v)
	}

	if !active {
		t.Fatal("thresholder squelched on an active signal")
	}
	// 阈值落在底噪和峰值之间才能同时分开静止和运动窗口
	if threshold <= 0.002 || threshold >= 0.09 {
		t.Errorf("threshold = %v, want between 0.002 and 0.09", threshold)
	}
}

func TestAutoThresholderSquelchAfterActivityStops(t *testing.T) {
	at := NewAutoThresholder(0.98, 0.004)

	for i := 0; i < 50; i++ {
		v := 0.002
		if i%2 == 0 {
			v = 0.09
		}
		at.Update(v)
	}

	// 运动停止后包络收拢，最终回到静噪
	var active bool
	for i := 0; i < 1000; i++ {
		_, active = at.Update(0.0001)
	}
	if active {
		t.Error("thresholder still active long after motion stopped")
	}
}
