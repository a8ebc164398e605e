package stepcounter

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}
	return path
}

func TestLoadModel(t *testing.T) {
	path := writeModelFile(t, `{"weights": [1.0, -0.5], "bias": 0.25}`)

	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if m.InputLen() != 2 {
		t.Errorf("InputLen = %d, want 2", m.InputLen())
	}
	if m.Bias != 0.25 {
		t.Errorf("Bias = %v, want 0.25", m.Bias)
	}
}

func TestLoadModelErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty weights", `{"weights": [], "bias": 0}`},
		{"bad json", `{weights: oops`},
		{"normalization mismatch", `{"weights": [1, 2], "bias": 0, "mean": [0], "scale": [1]}`},
	}

	for _, tc := range cases {
		path := writeModelFile(t, tc.content)
		if _, err := LoadModel(path); err == nil {
			t.Errorf("%s: LoadModel succeeded, want error", tc.name)
		}
	}

	if _, err := LoadModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: LoadModel succeeded, want error")
	}
}

func TestLogisticPredict(t *testing.T) {
	m := &LogisticModel{Weights: []float64{1, 0}, Bias: 0}

	// w·x = 0 → sigmoid(0) = 0.5
	p, err := m.Predict([]float64{0, 5})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(p-0.5) > 1e-9 {
		t.Errorf("Predict = %v, want 0.5", p)
	}

	// 大正激励饱和到 1，不溢出
	p, _ = m.Predict([]float64{1000, 0})
	if p != 1.0 {
		t.Errorf("Predict(large) = %v, want 1.0", p)
	}

	// 特征长度不匹配报错
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("Predict accepted short feature vector")
	}
}

func TestLogisticPredictNormalization(t *testing.T) {
	m := &LogisticModel{
		Weights: []float64{1},
		Bias:    0,
		Mean:    []float64{10},
		Scale:   []float64{2},
	}

	// (12-10)/2 = 1 → sigmoid(1)
	p, err := m.Predict([]float64{12})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	want := 1 / (1 + math.Exp(-1))
	if math.Abs(p-want) > 1e-9 {
		t.Errorf("Predict = %v, want %v (standardized input)", p, want)
	}
}
