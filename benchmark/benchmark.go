package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	stepcounter "github.com/Yasindu20/Fitness-Warrior-sub000"
)

// 离线跑整条检测链路，测不同步频/噪声下的检出率和吞吐量。
//
// 不走引擎的实时通道，直接以回放进度驱动组件，去抖器挂虚拟时钟，
// 跑多快都不会触发不应期误杀。没有训练好的模型也能跑：用一个
// 纯能量启发式模型代替逻辑回归，评估的是门控/峰值/去抖链路本身。

// scenario 一组测试条件
type scenario struct {
	name    string
	cadence float64 // 步/秒, 0 表示静置
	noise   float64 // 加速度噪声 sigma (g)
	seconds int
}

func main() {
	scenarios := []scenario{
		{"slow walk", 1.2, 0.02, 120},
		{"normal walk", 1.8, 0.02, 120},
		{"fast walk", 2.4, 0.02, 120},
		{"noisy walk", 1.8, 0.06, 120},
		{"idle", 0, 0.02, 120},
		{"idle noisy", 0, 0.05, 120},
	}

	fmt.Println("=== Step detection pipeline benchmark ===")
	fmt.Println()

	for _, sc := range scenarios {
		runScenario(sc)
	}
}

func runScenario(sc scenario) {
	cfg := stepcounter.DefaultConfig()
	rng := rand.New(rand.NewSource(1))

	// 1. 组装链路 (与引擎 evaluateWindow 相同的顺序)
	window := stepcounter.NewSampleWindow(cfg.Window.Size)
	gate := stepcounter.NewMotionGate(cfg)
	peak := stepcounter.NewPeakDetector(cfg)
	classifier, err := stepcounter.NewStepClassifier(&energyModel{inputLen: cfg.Window.Size * stepcounter.NumChannels}, cfg)
	if err != nil {
		fmt.Printf("%-12s classifier init failed: %v\n", sc.name, err)
		return
	}
	debouncer := stepcounter.NewDecisionDebouncer(cfg)

	// 2. 虚拟时钟：按回放进度推进
	samplePeriod := time.Duration(float64(time.Second) / cfg.Window.SampleRate)
	virtualNow := time.Unix(0, 0)
	debouncer.SetClock(func() time.Time { return virtualNow })

	// 3. 生成并回放
	total := int(float64(sc.seconds) * cfg.Window.SampleRate)
	detections := 0
	classifierCalls := 0

	start := time.Now()
	for i := 0; i < total; i++ {
		virtualNow = virtualNow.Add(samplePeriod)
		w := window.Push(synthSample(i, cfg.Window.SampleRate, sc.cadence, sc.noise, rng))
		if w == nil {
			continue
		}

		if gate.Evaluate(w) == stepcounter.Stationary {
			continue
		}
		p := peak.Evaluate(w.VerticalVariance())
		classifierCalls++
		probability := classifier.Classify(w)
		if debouncer.Evaluate(probability, p) {
			detections++
		}
	}
	elapsed := time.Since(start)

	// 4. 汇总：对行走场景报窗口检出率，对静置场景报误报数
	windows := total / cfg.Window.Size
	throughput := float64(total) / elapsed.Seconds()

	if sc.cadence > 0 {
		rate := 100 * float64(detections) / float64(windows)
		fmt.Printf("%-12s windows=%d detected=%d (%.0f%%) classifier=%d  %.0f samples/s\n",
			sc.name, windows, detections, rate, classifierCalls, throughput)
	} else {
		fmt.Printf("%-12s windows=%d false positives=%d classifier=%d  %.0f samples/s\n",
			sc.name, windows, detections, classifierCalls, throughput)
	}
}

// synthSample 合成一个样本，模型与 example/gen_walk.go 一致
func synthSample(i int, rate, cadence, noise float64, rng *rand.Rand) stepcounter.Sample {
	if cadence == 0 {
		return stepcounter.Sample{
			AccelX: rng.NormFloat64() * noise,
			AccelY: rng.NormFloat64() * noise,
			AccelZ: 1.0 + rng.NormFloat64()*noise,
			GyroX:  rng.NormFloat64() * 0.01,
			GyroY:  rng.NormFloat64() * 0.01,
			GyroZ:  rng.NormFloat64() * 0.01,
		}
	}

	t := float64(i) / rate
	phase := 2 * math.Pi * cadence * t
	impact := 0.18*math.Sin(phase) + 0.07*math.Sin(2*phase+0.6)
	return stepcounter.Sample{
		AccelX: 0.08*math.Sin(phase+1.1) + rng.NormFloat64()*noise,
		AccelY: 0.05*math.Cos(phase) + rng.NormFloat64()*noise,
		AccelZ: 1.0 + impact + rng.NormFloat64()*noise,
		GyroX:  0.5*math.Sin(phase+0.3) + rng.NormFloat64()*0.05,
		GyroY:  0.3*math.Cos(phase) + rng.NormFloat64()*0.05,
		GyroZ:  rng.NormFloat64() * 0.05,
	}
}

// energyModel 能量启发式模型：加速度合成幅值的去均值方差越大，
// "这是一步" 的概率越高。只为 benchmark 服务，不用于生产
type energyModel struct {
	inputLen int
}

func (m *energyModel) InputLen() int {
	return m.inputLen
}

func (m *energyModel) Predict(features []float64) (float64, error) {
	n := m.inputLen / stepcounter.NumChannels

	mags := make([]float64, 0, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		off := i * stepcounter.NumChannels
		mag := math.Sqrt(features[off]*features[off] +
			features[off+1]*features[off+1] +
			features[off+2]*features[off+2])
		mags = append(mags, mag)
		sum += mag
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, mag := range mags {
		d := mag - mean
		variance += d * d
	}
	variance /= float64(n)

	// 方差 0.005 左右过阈值, sigmoid 压到 [0,1]
	z := 400*variance - 2
	return 1 / (1 + math.Exp(-z)), nil
}
