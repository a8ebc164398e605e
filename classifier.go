package stepcounter

import (
	"fmt"
	"log"
)

// StepClassifier 包装外部分类模型：负责窗口校验、一次性预热、
// 以及推理失败时的兜底。
// 失败语义：单窗口推理失败绝不能打断用户可见的计步流程，
// 一律按概率 0 处理 (fail-safe)，只记日志。
type StepClassifier struct {
	model    Model
	inputLen int
	winSize  int
}

// NewStepClassifier 创建适配器并执行一次预热推理。
// 模型加载/预热失败是致命错误，引擎拒绝启动。
func NewStepClassifier(model Model, cfg *Config) (*StepClassifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if model == nil {
		return nil, fmt.Errorf("classifier model is nil")
	}

	expected := cfg.Window.Size * NumChannels
	if model.InputLen() != expected {
		return nil, fmt.Errorf("model input length %d does not match window %dx%d", model.InputLen(), cfg.Window.Size, NumChannels)
	}

	c := &StepClassifier{
		model:    model,
		inputLen: expected,
		winSize:  cfg.Window.Size,
	}

	// 预热：首次推理通常伴随一次性初始化开销 (内存分配、JIT、
	// 外部运行时的图编译)，放在启动阶段做掉，避免污染第一个真实窗口
	warmup := make([]float64, expected)
	if _, err := c.predict(warmup); err != nil {
		return nil, fmt.Errorf("model warm-up failed: %v", err)
	}

	return c, nil
}

// Classify 对一个窗口做推理，返回 [0,1] 概率。
// 窗口长度不对 (样本不足 / 通道错乱) 直接拒绝，按无步处理。
func (c *StepClassifier) Classify(w *Window) float64 {
	if w == nil || w.Len() != c.winSize {
		got := 0
		if w != nil {
			got = w.Len()
		}
		log.Printf("[CLASSIFIER] malformed window rejected: %d samples (want %d)", got, c.winSize)
		return 0
	}

	p, err := c.predict(w.Flatten())
	if err != nil {
		log.Printf("[CLASSIFIER] inference failed, treating as no-step: %v", err)
		return 0
	}
	return p
}

// predict 调用底层模型，捕获 panic 转为错误
// 外部推理运行时的绑定层 (cgo 等) 出问题时不能把整条采样链路带崩
func (c *StepClassifier) predict(features []float64) (p float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = 0
			err = fmt.Errorf("model panic: %v", r)
		}
	}()
	return c.model.Predict(features)
}
