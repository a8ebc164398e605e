package stepcounter

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// CadenceMonitor 在后台异步运行，使用 Welch 法计算加速度幅值信号的
// 平均功率谱，提取主频作为步频估计 (步/分)。
// 纯观测输出：节奏只用于界面展示和调参，不参与计步判定。
type CadenceMonitor struct {
	cfg *Config

	sampleRate     float64
	fftSize        int
	overlap        int
	updateInterval time.Duration

	// 通信
	magInChan       chan []float64        // 从评估线程接收每窗口的幅值序列
	OnCadenceUpdate func(stepsPerMin float64) // 回调函数，通知新的节奏估计

	// 内部状态
	window     []float64 // Hann 窗
	ringBuffer []float64 // 环形缓冲区，存储足够进行 Welch 计算的数据
	ringPos    int
	ctx        context.Context
	cancel     context.CancelFunc

	// 节奏平滑状态
	smoothedFreq float64
	hasLock      bool
}

// NewCadenceMonitor 创建实例
func NewCadenceMonitor(cfg *Config, onUpdate func(float64)) *CadenceMonitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	fftSize := cfg.Cadence.FFTSize
	overlap := fftSize / 2
	numSegments := 4
	bufferSize := fftSize + (numSegments-1)*(fftSize-overlap)

	// Hann 窗
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(fftSize-1)))
	}

	return &CadenceMonitor{
		cfg:             cfg,
		sampleRate:      cfg.Window.SampleRate,
		fftSize:         fftSize,
		overlap:         overlap,
		updateInterval:  cfg.Cadence.UpdateInterval,
		magInChan:       make(chan []float64, 100),
		OnCadenceUpdate: onUpdate,
		window:          window,
		ringBuffer:      make([]float64, bufferSize),
	}
}

// Start 启动后台监测 goroutine。
// context 每次启动新建，Stop 之后可以再次 Start (引擎重启场景)
func (cm *CadenceMonitor) Start() {
	if !cm.cfg.Cadence.Enabled {
		return
	}
	cm.ctx, cm.cancel = context.WithCancel(context.Background())
	go cm.run(cm.ctx)
}

// Stop 停止监测
func (cm *CadenceMonitor) Stop() {
	if cm.cancel != nil {
		cm.cancel()
	}
}

// PushMagnitudes 评估线程调用此方法推送每窗口的幅值序列。
// 缓冲区满时直接丢弃，绝不阻塞评估线程
func (cm *CadenceMonitor) PushMagnitudes(mags []float64) {
	if !cm.cfg.Cadence.Enabled {
		return
	}
	select {
	case cm.magInChan <- mags:
	default:
	}
}

// run 后台主循环。
// ctx 按值传入：重启会换掉 cm.ctx，旧循环必须跟着旧 context 退出
func (cm *CadenceMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(cm.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case mags := <-cm.magInChan:
			// 去掉直流分量 (重力) 再入环形缓冲区
			var mean float64
			for _, m := range mags {
				mean += m
			}
			if len(mags) > 0 {
				mean /= float64(len(mags))
			}
			for _, m := range mags {
				cm.ringBuffer[cm.ringPos] = m - mean
				cm.ringPos = (cm.ringPos + 1) % len(cm.ringBuffer)
			}
		case <-ticker.C:
			freq, mag, noiseFloor := cm.calculateWelch()
			if freq <= 0 {
				continue
			}

			// 信噪比门控：底噪里挑出来的 "峰" 不算数
			if mag > noiseFloor*cm.cfg.Cadence.RequiredSNR {
				alpha := cm.cfg.Cadence.Alpha
				if !cm.hasLock {
					cm.smoothedFreq = freq
					cm.hasLock = true
					fmt.Printf("[CADENCE] Initial lock: %.0f steps/min\n", freq*60)
				} else {
					cm.smoothedFreq = cm.smoothedFreq*(1-alpha) + freq*alpha
				}

				if cm.OnCadenceUpdate != nil {
					cm.OnCadenceUpdate(cm.smoothedFreq * 60)
				}
			}
		}
	}
}

// calculateWelch 执行 Welch 平均周期图法
// 返回: 峰值频率 (Hz), 峰值功率, 噪声基底功率
func (cm *CadenceMonitor) calculateWelch() (float64, float64, float64) {
	numSegments := 0
	avgSpectrum := make([]float64, cm.fftSize/2+1)
	step := cm.fftSize - cm.overlap

	// 分段计算
	for i := 0; (i + cm.fftSize) <= len(cm.ringBuffer); i += step {
		segment := cm.ringBuffer[i : i+cm.fftSize]

		// 1. 加窗
		windowed := make([]complex128, cm.fftSize)
		for j, v := range segment {
			windowed[j] = complex(v*cm.window[j], 0)
		}

		// 2. FFT
		spectrum := fft.FFT(windowed)

		// 3. 功率谱累加
		for j := 0; j < len(avgSpectrum); j++ {
			power := cmplx.Abs(spectrum[j])
			avgSpectrum[j] += power * power
		}
		numSegments++
	}

	if numSegments == 0 {
		return 0, 0, 0
	}

	for i := range avgSpectrum {
		avgSpectrum[i] /= float64(numSegments)
	}

	// 4. 估算噪声基底：用中位数抵抗信号峰的干扰
	sortedSpectrum := make([]float64, len(avgSpectrum))
	copy(sortedSpectrum, avgSpectrum)
	sort.Float64s(sortedSpectrum)
	noiseFloor := sortedSpectrum[len(sortedSpectrum)/2]
	if noiseFloor < 1e-12 {
		noiseFloor = 1e-12
	}

	// 5. 在步频频带内寻找峰值
	binWidth := cm.sampleRate / float64(cm.fftSize)
	startIndex := int(cm.cfg.Cadence.MinFrequency / binWidth)
	endIndex := int(cm.cfg.Cadence.MaxFrequency / binWidth)
	if startIndex < 1 {
		startIndex = 1 // 跳过直流分量
	}
	if endIndex > len(avgSpectrum) {
		endIndex = len(avgSpectrum)
	}

	maxMag := 0.0
	maxIndex := 0
	for i := startIndex; i < endIndex; i++ {
		if avgSpectrum[i] > maxMag {
			maxMag = avgSpectrum[i]
			maxIndex = i
		}
	}
	if maxIndex == 0 {
		return 0, 0, noiseFloor
	}

	// 6. 抛物线插值提高频率精度
	var freq float64
	if maxIndex > 0 && maxIndex < len(avgSpectrum)-1 {
		alpha := avgSpectrum[maxIndex-1]
		beta := avgSpectrum[maxIndex]
		gamma := avgSpectrum[maxIndex+1]
		denom := alpha - 2*beta + gamma
		if denom != 0 {
			p := 0.5 * (alpha - gamma) / denom
			freq = (float64(maxIndex) + p) * binWidth
		} else {
			freq = float64(maxIndex) * binWidth
		}
	} else {
		freq = float64(maxIndex) * binWidth
	}

	return freq, maxMag, noiseFloor
}
