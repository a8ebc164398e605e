package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	stepcounter "github.com/Yasindu20/Fitness-Warrior-sub000"
)

// 离线拟合步伐分类模型。
//
// 输入是两段录制 (cmd -record 产出的 CSV)：一段持续行走，一段静置/
// 手持晃动等非行走动作。把每段切成与引擎相同的不重叠窗口，行走段
// 标 1、非行走段标 0，然后用梯度下降拟合逻辑回归，导出 model.json
// 供引擎加载。

func main() {
	// 1. 解析参数
	walkFile := flag.String("walk", "walk.csv", "Recording of continuous walking (label 1)")
	idleFile := flag.String("idle", "idle.csv", "Recording of non-walking motion (label 0)")
	outFile := flag.String("out", "model.json", "Output model file")
	windowSize := flag.Int("window", 50, "Samples per window (must match engine config)")
	epochs := flag.Int("epochs", 400, "Training epochs")
	learningRate := flag.Float64("lr", 0.1, "Learning rate")
	flag.Parse()

	// 2. 加载并切窗
	walkWindows, err := loadWindows(*walkFile, *windowSize)
	if err != nil {
		fmt.Printf("Error loading walk recording: %v\n", err)
		os.Exit(1)
	}
	idleWindows, err := loadWindows(*idleFile, *windowSize)
	if err != nil {
		fmt.Printf("Error loading idle recording: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d walk windows, %d idle windows\n", len(walkWindows), len(idleWindows))
	if len(walkWindows) == 0 || len(idleWindows) == 0 {
		fmt.Println("Error: both recordings must contain at least one full window")
		os.Exit(1)
	}

	features := append(walkWindows, idleWindows...)
	labels := make([]float64, len(features))
	for i := range walkWindows {
		labels[i] = 1
	}

	// 3. 逐维标准化 (参数随模型一起导出，推理时引擎做同样的变换)
	dim := *windowSize * stepcounter.NumChannels
	mean, scale := standardize(features, dim)

	// 4. 梯度下降拟合
	weights := make([]float64, dim)
	bias := 0.0
	n := float64(len(features))

	for epoch := 0; epoch < *epochs; epoch++ {
		gradW := make([]float64, dim)
		gradB := 0.0
		loss := 0.0

		for i, x := range features {
			p := sigmoid(dot(weights, x) + bias)
			err := p - labels[i]
			for j, xj := range x {
				gradW[j] += err * xj
			}
			gradB += err

			// 交叉熵，截断避免 log(0)
			q := math.Min(math.Max(p, 1e-12), 1-1e-12)
			if labels[i] > 0.5 {
				loss -= math.Log(q)
			} else {
				loss -= math.Log(1 - q)
			}
		}

		for j := range weights {
			weights[j] -= *learningRate * gradW[j] / n
		}
		bias -= *learningRate * gradB / n

		if epoch%50 == 0 || epoch == *epochs-1 {
			fmt.Printf("epoch %4d  loss %.4f\n", epoch, loss/n)
		}
	}

	// 5. 训练集准确率 (只是粗检，真正的验证要用未见过的录制)
	correct := 0
	for i, x := range features {
		p := sigmoid(dot(weights, x) + bias)
		if (p > 0.5) == (labels[i] > 0.5) {
			correct++
		}
	}
	fmt.Printf("Training accuracy: %d/%d (%.1f%%)\n",
		correct, len(features), 100*float64(correct)/n)

	// 6. 导出模型
	model := stepcounter.LogisticModel{
		Weights: weights,
		Bias:    bias,
		Mean:    mean,
		Scale:   scale,
	}
	data, err := json.MarshalIndent(&model, "", " ")
	if err != nil {
		fmt.Printf("Error marshaling model: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outFile, data, 0644); err != nil {
		fmt.Printf("Error writing model file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model saved to %s (%d weights)\n", *outFile, len(weights))
}

// loadWindows 读取录制文件并切成展开后的特征向量
func loadWindows(path string, windowSize int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var windows [][]float64
	sw := stepcounter.NewSampleWindow(windowSize)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "accel_x") {
			continue
		}
		s, err := stepcounter.ParseSampleLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNo, err)
		}
		if w := sw.Push(s); w != nil {
			windows = append(windows, w.Flatten())
		}
	}
	return windows, scanner.Err()
}

// standardize 计算每维均值和标准差，并就地把特征变换到标准化空间。
// 标准差为 0 的维度 scale 记 1，避免除零
func standardize(features [][]float64, dim int) (mean, scale []float64) {
	mean = make([]float64, dim)
	scale = make([]float64, dim)
	n := float64(len(features))

	for _, x := range features {
		for j, v := range x {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	for _, x := range features {
		for j, v := range x {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	for _, x := range features {
		for j := range x {
			x[j] = (x[j] - mean[j]) / scale[j]
		}
	}
	return mean, scale
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	if z > 40 {
		return 1
	}
	if z < -40 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
