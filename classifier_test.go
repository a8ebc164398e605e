package stepcounter

import (
	"errors"
	"testing"
)

// fakeModel 可编程的模型桩
type fakeModel struct {
	inputLen int
	fn       func(features []float64) (float64, error)
}

func (m *fakeModel) InputLen() int { return m.inputLen }

func (m *fakeModel) Predict(features []float64) (float64, error) {
	if m.fn == nil {
		return 0.9, nil
	}
	return m.fn(features)
}

func TestClassifierRejectsNilModel(t *testing.T) {
	if _, err := NewStepClassifier(nil, DefaultConfig()); err == nil {
		t.Error("no error for nil model")
	}
}

func TestClassifierRejectsInputLenMismatch(t *testing.T) {
	m := &fakeModel{inputLen: 100} // 窗口要求 50*6=300
	if _, err := NewStepClassifier(m, DefaultConfig()); err == nil {
		t.Error("no error for input length mismatch")
	}
}

func TestClassifierWarmupFailureIsFatal(t *testing.T) {
	m := &fakeModel{
		inputLen: 300,
		fn: func([]float64) (float64, error) {
			return 0, errors.New("runtime not ready")
		},
	}
	if _, err := NewStepClassifier(m, DefaultConfig()); err == nil {
		t.Error("no error when warm-up inference fails")
	}
}

func TestClassifierHappyPath(t *testing.T) {
	m := &fakeModel{
		inputLen: 300,
		fn:       func([]float64) (float64, error) { return 0.73, nil },
	}
	c, err := NewStepClassifier(m, DefaultConfig())
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if p := c.Classify(oscillatingWindow(50, 0.3)); p != 0.73 {
		t.Errorf("Classify = %v, want 0.73", p)
	}
}

func TestClassifierInferenceErrorMeansNoStep(t *testing.T) {
	calls := 0
	m := &fakeModel{
		inputLen: 300,
		fn: func([]float64) (float64, error) {
			calls++
			if calls == 1 {
				return 0.5, nil // 预热成功
			}
			return 0, errors.New("inference blew up")
		},
	}
	c, err := NewStepClassifier(m, DefaultConfig())
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	// 单窗口推理失败是兜底路径：概率 0，链路继续
	if p := c.Classify(oscillatingWindow(50, 0.3)); p != 0 {
		t.Errorf("Classify after inference error = %v, want 0 (fail-safe)", p)
	}
}

func TestClassifierPanicRecovered(t *testing.T) {
	calls := 0
	m := &fakeModel{
		inputLen: 300,
		fn: func([]float64) (float64, error) {
			calls++
			if calls == 1 {
				return 0.5, nil
			}
			panic("cgo binding crashed")
		},
	}
	c, err := NewStepClassifier(m, DefaultConfig())
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if p := c.Classify(oscillatingWindow(50, 0.3)); p != 0 {
		t.Errorf("Classify after model panic = %v, want 0", p)
	}
	// panic 被吞掉之后链路必须还能继续推理
	if p := c.Classify(oscillatingWindow(50, 0.3)); p != 0 {
		t.Errorf("Classify on next window = %v, want 0", p)
	}
}

func TestClassifierRejectsMalformedWindow(t *testing.T) {
	m := &fakeModel{inputLen: 300}
	c, err := NewStepClassifier(m, DefaultConfig())
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	// 样本数不足的窗口直接拒绝，不调用模型
	if p := c.Classify(oscillatingWindow(10, 0.3)); p != 0 {
		t.Errorf("Classify(short window) = %v, want 0", p)
	}
	if p := c.Classify(nil); p != 0 {
		t.Errorf("Classify(nil) = %v, want 0", p)
	}
}
