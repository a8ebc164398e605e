package stepcounter

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Model 定义分类模型的最小接口：输入展开后的窗口特征向量，
// 输出 [0,1] 的 "这是一步" 概率。
// 引擎把模型当黑盒，模型内部结构 (逻辑回归 / 神经网络 / 外部推理
// 运行时的绑定) 与引擎正确性无关。
type Model interface {
	Predict(features []float64) (float64, error)
	// InputLen 返回模型期望的特征向量长度
	InputLen() int
}

// LogisticModel 是默认的模型实现：对展开后的窗口做逻辑回归。
// 权重由 TrainModel 工具离线拟合后导出为 JSON
type LogisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	// Mean/Scale 为每维特征的标准化参数，可为空 (不做标准化)
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`
}

// LoadModel 从 JSON 文件加载模型。
// 模型加载失败是致命错误：引擎没有模型无法工作，直接向调用方返回错误。
func LoadModel(path string) (*LogisticModel, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %v", path, err)
	}

	var m LogisticModel
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %v", path, err)
	}

	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model file %s has no weights", path)
	}
	if len(m.Mean) > 0 && len(m.Mean) != len(m.Weights) {
		return nil, fmt.Errorf("model normalization length mismatch: %d mean vs %d weights", len(m.Mean), len(m.Weights))
	}

	return &m, nil
}

// InputLen 返回模型期望的特征向量长度
func (m *LogisticModel) InputLen() int {
	return len(m.Weights)
}

// Predict 计算 sigmoid(w·x + b)
func (m *LogisticModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature length %d does not match model input %d", len(features), len(m.Weights))
	}

	z := m.Bias
	for i, x := range features {
		if len(m.Mean) > 0 {
			x = (x - m.Mean[i])
			if m.Scale[i] != 0 {
				x /= m.Scale[i]
			}
		}
		z += m.Weights[i] * x
	}

	// sigmoid，截断极端值防止 Exp 溢出
	if z > 40 {
		return 1.0, nil
	}
	if z < -40 {
		return 0.0, nil
	}
	return 1.0 / (1.0 + math.Exp(-z)), nil
}
