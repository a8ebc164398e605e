package stepcounter

import (
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/Yasindu20/Fitness-Warrior-sub000/Filters"
)

// StepEngine 管理整个步数检测与会话记账系统的生命周期。
//
// 数据流:
//
//	SensorSource -> SampleWindow -> {MotionGate, PeakDetector, StepClassifier}
//	             -> DecisionDebouncer -> SessionAccountant -> StepStore
//
// 并发模型：传感器回调只把样本塞进缓冲通道，所有窗口评估都在
// 单一 goroutine 里串行执行。同一个去抖状态绝不会被两个窗口
// 并发评估，不应期/连续计数不变量靠结构保证，不需要锁。
// 落库是唯一允许挂起的操作，由 SessionAccountant 在锁外异步执行，
// 不会阻塞采样。
type StepEngine struct {
	cfg *Config

	// 组件
	source     SensorSource
	window     *SampleWindow
	gate       *MotionGate
	peak       *PeakDetector
	classifier *StepClassifier
	debouncer  *DecisionDebouncer
	accountant *SessionAccountant
	cadence    *CadenceMonitor
	filter     *Filters.AccelFilter
	recorder   *CsvSampleWriter
	debugger   SignalDebugger

	// 样本缓冲通道：落库等慢操作进行期间样本在这里排队
	sampleChan chan Sample
	done       chan struct{}
	started    bool

	// 观测计数
	classifierCalls int64
	droppedSamples  int64

	// 回调
	OnStep    func(totalCount int)      // 每确认一步回调 (界面/震动)
	OnCadence func(stepsPerMin float64) // 节奏估计更新回调
}

// NewStepEngine 创建引擎实例并注入协作方。
// model 为空或预热失败时返回错误：没有模型引擎无法启动。
func NewStepEngine(cfg *Config, model Model, source SensorSource, store StepStore) (*StepEngine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if source == nil {
		return nil, fmt.Errorf("sensor source is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("step store is nil")
	}

	classifier, err := NewStepClassifier(model, cfg)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %v", err)
	}

	e := &StepEngine{
		cfg:        cfg,
		source:     source,
		window:     NewSampleWindow(cfg.Window.Size),
		gate:       NewMotionGate(cfg),
		peak:       NewPeakDetector(cfg),
		classifier: classifier,
		debouncer:  NewDecisionDebouncer(cfg),
		accountant: NewSessionAccountant(cfg, store),
		sampleChan: make(chan Sample, 512),
		debugger:   &NoOpDebugger{},
	}

	if cfg.Filter.Enabled {
		e.filter = Filters.NewAccelFilter(cfg.Filter.Order, cfg.Window.SampleRate, cfg.Filter.Cutoff)
	}

	e.cadence = NewCadenceMonitor(cfg, func(spm float64) {
		if e.OnCadence != nil {
			e.OnCadence(spm)
		}
	})

	// 通知链：记账器确认计入后再触发界面回调
	e.accountant.OnStep = func() {
		if e.OnStep != nil {
			e.OnStep(e.accountant.CurrentCount())
		}
	}

	return e, nil
}

// SetDebugger 注入信号调试器 (默认 NoOp)
func (e *StepEngine) SetDebugger(d SignalDebugger) {
	if d != nil {
		e.debugger = d
	}
}

// EnableRecording 开启样本录制，录到指定 CSV 文件
func (e *StepEngine) EnableRecording(filename string) error {
	w, err := NewCsvSampleWriter(filename)
	if err != nil {
		return fmt.Errorf("failed to create record file: %v", err)
	}
	e.recorder = w
	fmt.Printf("Recording samples to %s\n", filename)
	return nil
}

// Start 启动引擎：注册传感器回调，启动评估循环和节奏监测。
// 此时还不计步，计步由 StartCounting 显式开启
func (e *StepEngine) Start() error {
	if e.started {
		return fmt.Errorf("engine already started")
	}

	e.done = make(chan struct{})
	go e.run()
	e.cadence.Start()

	if err := e.source.Start(e.onSample); err != nil {
		close(e.done)
		return fmt.Errorf("sensor source start failed: %v", err)
	}

	e.started = true
	fmt.Println("Engine started.")
	return nil
}

// Stop 停止引擎并释放资源。
// 会话还在计步时做一次受 flushed 守卫的最终落库 (组件销毁路径)，
// 不会在显式 Stop 已落库之后再落一次
func (e *StepEngine) Stop() {
	if !e.started {
		return
	}
	e.started = false

	e.source.Stop()
	e.cadence.Stop()
	close(e.done)

	// 尽力而为的收尾落库：Stop/Flush 内部的 flushed 守卫保证不重复
	if e.accountant.Status() == Counting {
		if err := e.accountant.Stop(); err != nil {
			log.Printf("[ENGINE] teardown flush failed: %v", err)
		}
	}

	if e.recorder != nil {
		fmt.Println("Saving recording...")
		if err := e.recorder.Close(); err != nil {
			log.Printf("[ENGINE] failed to close recording: %v", err)
		}
		e.recorder = nil
	}
	e.debugger.Close()
	fmt.Println("Engine stopped.")
}

// StartCounting 开始计步会话
func (e *StepEngine) StartCounting() error {
	e.debouncer.Reset()
	e.window.Reset()
	return e.accountant.Start()
}

// StopCounting 停止计步会话并做最终落库
func (e *StepEngine) StopCounting() error {
	return e.accountant.Stop()
}

// ResetCounters 显式清零计数 (计步中会被拒绝)
func (e *StepEngine) ResetCounters() error {
	return e.accountant.Reset()
}

// Flush 手动触发一次落库
func (e *StepEngine) Flush() error {
	return e.accountant.Flush()
}

// CurrentCount 返回当前累计步数
func (e *StepEngine) CurrentCount() int {
	return e.accountant.CurrentCount()
}

// SessionStatus 返回会话状态
func (e *StepEngine) SessionStatus() SessionStatus {
	return e.accountant.Status()
}

// ClassifierCalls 返回分类器被调用的次数 (观测用)
func (e *StepEngine) ClassifierCalls() int64 {
	return atomic.LoadInt64(&e.classifierCalls)
}

// onSample 传感器回调：绝不在这里做任何评估，塞进通道立刻返回
func (e *StepEngine) onSample(s Sample) {
	if e.filter != nil {
		s.AccelX, s.AccelY, s.AccelZ = e.filter.Process(s.AccelX, s.AccelY, s.AccelZ)
	}
	if e.recorder != nil {
		_ = e.recorder.WriteSample(s)
	}

	select {
	case e.sampleChan <- s:
	default:
		// 通道满说明评估线程被堵死了 (不应该发生)，丢样本保命
		n := atomic.AddInt64(&e.droppedSamples, 1)
		if n%1000 == 1 {
			log.Printf("[ENGINE] sample buffer full, dropped %d samples", n)
		}
	}
}

// run 评估主循环：唯一触碰窗口/门控/去抖状态的 goroutine
func (e *StepEngine) run() {
	for {
		select {
		case <-e.done:
			return
		case s := <-e.sampleChan:
			if w := e.window.Push(s); w != nil {
				e.evaluateWindow(w)
			}
		}
	}
}

// evaluateWindow 对一个完整窗口执行一轮原子评估
func (e *StepEngine) evaluateWindow(w *Window) {
	// 节奏监测要的是幅值序列，不管门控结果都推
	e.cadence.PushMagnitudes(magnitudes(w))

	// 1. 运动门控：静止则硬短路，分类器/峰值/去抖一概不跑
	if e.gate.Evaluate(w) == Stationary {
		e.debugger.Record(e.gate.Intensity(), 0, 0, false, false)
		return
	}

	// 2. 峰值旁证 (方差只算一次，检测器和调试器共用)
	peakVar := w.VerticalVariance()
	peak := e.peak.Evaluate(peakVar)

	// 3. 分类器推理
	atomic.AddInt64(&e.classifierCalls, 1)
	probability := e.classifier.Classify(w)

	// 4. 去抖判定
	step := e.debouncer.Evaluate(probability, peak)
	if step {
		e.accountant.OnStepEvent()
	}

	e.debugger.Record(e.gate.Intensity(), probability, peakVar, true, step)
}

// magnitudes 计算窗口内每个样本的加速度合成幅值
func magnitudes(w *Window) []float64 {
	out := make([]float64, 0, w.Len())
	for _, s := range w.Samples {
		out = append(out, math.Sqrt(s.AccelX*s.AccelX+s.AccelY*s.AccelY+s.AccelZ*s.AccelZ))
	}
	return out
}
