package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// 生成合成行走/静置录制，供 TrainModel 和 -replay 模式在没有
// 真实 IMU 硬件时使用。
//
// 行走信号模型：重力叠加步频基波和二次谐波，外加白噪声；
// 陀螺仪跟随步频做小幅摆动。静置信号只有重力和传感器噪声。

func main() {
	walkFile := flag.String("walk", "walk.csv", "Output file for the walking recording")
	idleFile := flag.String("idle", "idle.csv", "Output file for the idle recording")
	seconds := flag.Int("seconds", 120, "Duration of each recording")
	sampleRate := flag.Float64("rate", 50.0, "Sample rate in Hz")
	cadence := flag.Float64("cadence", 1.8, "Walking cadence in steps per second")
	noise := flag.Float64("noise", 0.02, "Accelerometer noise sigma (g)")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	total := int(float64(*seconds) * *sampleRate)

	// 1. 行走录制
	if err := writeRecording(*walkFile, total, func(i int) [6]float64 {
		t := float64(i) / *sampleRate
		phase := 2 * math.Pi * *cadence * t
		// 步频基波 + 二次谐波 (脚跟着地的冲击成分)
		impact := 0.18*math.Sin(phase) + 0.07*math.Sin(2*phase+0.6)
		return [6]float64{
			0.08*math.Sin(phase+1.1) + rng.NormFloat64()**noise,
			0.05*math.Cos(phase) + rng.NormFloat64()**noise,
			1.0 + impact + rng.NormFloat64()**noise,
			0.5*math.Sin(phase+0.3) + rng.NormFloat64()*0.05,
			0.3*math.Cos(phase) + rng.NormFloat64()*0.05,
			rng.NormFloat64() * 0.05,
		}
	}); err != nil {
		fmt.Printf("Error writing %s: %v\n", *walkFile, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d samples, %.1f steps/s)\n", *walkFile, total, *cadence)

	// 2. 静置录制
	if err := writeRecording(*idleFile, total, func(i int) [6]float64 {
		return [6]float64{
			rng.NormFloat64() * *noise,
			rng.NormFloat64() * *noise,
			1.0 + rng.NormFloat64()**noise,
			rng.NormFloat64() * 0.01,
			rng.NormFloat64() * 0.01,
			rng.NormFloat64() * 0.01,
		}
	}); err != nil {
		fmt.Printf("Error writing %s: %v\n", *idleFile, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d samples)\n", *idleFile, total)
}

// writeRecording 按引擎的录制格式写 CSV
func writeRecording(path string, total int, gen func(i int) [6]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z")
	for i := 0; i < total; i++ {
		ch := gen(i)
		fmt.Fprintf(w, "%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			ch[0], ch[1], ch[2], ch[3], ch[4], ch[5])
	}
	return w.Flush()
}
