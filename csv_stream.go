package stepcounter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// csvHeader 录制文件的表头，与串口线协议同序
const csvHeader = "accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z"

// CsvSampleReader 从录制的 CSV 文件回放样本流，
// 按标称采样率的节拍分块推送，模拟实时传感器。
// 用于离线调参和回归测试
type CsvSampleReader struct {
	Path       string
	SampleRate float64

	// ChunkSize 每个节拍推送的样本数
	ChunkSize int

	// OnEOF 文件读完时回调 (可选)
	OnEOF func()

	samples []Sample
	done    chan struct{}
}

// NewCsvSampleReader 创建回放数据源
func NewCsvSampleReader(path string, sampleRate float64) *CsvSampleReader {
	return &CsvSampleReader{
		Path:       path,
		SampleRate: sampleRate,
		ChunkSize:  10,
	}
}

// Start 加载文件并启动回放循环
func (r *CsvSampleReader) Start(cb SampleCallback) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %v", err)
	}
	defer f.Close()

	r.samples = r.samples[:0]
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == csvHeader {
			continue
		}
		s, err := ParseSampleLine(line)
		if err != nil {
			return fmt.Errorf("replay file line %d: %v", lineNo, err)
		}
		r.samples = append(r.samples, s)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read replay file: %v", err)
	}

	fmt.Printf("Mode: REPLAY (%s, %d samples, %.0fHz)\n", r.Path, len(r.samples), r.SampleRate)

	r.done = make(chan struct{})
	go r.runReplayLoop(cb)
	return nil
}

// Stop 停止回放
func (r *CsvSampleReader) Stop() {
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}

// runReplayLoop 按实时节拍推送样本
func (r *CsvSampleReader) runReplayLoop(cb SampleCallback) {
	// 计算 ticker 间隔以模拟实时速度
	interval := time.Duration(float64(r.ChunkSize) / r.SampleRate * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pos := 0
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			for i := 0; i < r.ChunkSize && pos < len(r.samples); i++ {
				cb(r.samples[pos])
				pos++
			}
			if pos >= len(r.samples) {
				fmt.Println("Replay finished.")
				if r.OnEOF != nil {
					r.OnEOF()
				}
				return
			}
		}
	}
}

// CsvSampleWriter 把实时样本流录制到 CSV 文件，供之后回放
type CsvSampleWriter struct {
	file   *os.File
	writer *bufio.Writer
	count  int
}

// NewCsvSampleWriter 创建录制文件
func NewCsvSampleWriter(filename string) (*CsvSampleWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(csvHeader + "\n"); err != nil {
		f.Close()
		return nil, err
	}

	return &CsvSampleWriter{file: f, writer: w}, nil
}

// WriteSample 追加一个样本
func (w *CsvSampleWriter) WriteSample(s Sample) error {
	_, err := fmt.Fprintf(w.writer, "%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
		s.AccelX, s.AccelY, s.AccelZ, s.GyroX, s.GyroY, s.GyroZ)
	w.count++
	// 定期刷新，防止程序异常退出导致数据丢失
	if w.count%1024 == 0 {
		return w.writer.Flush()
	}
	return err
}

// Close 刷新缓冲区并关闭文件
func (w *CsvSampleWriter) Close() error {
	if w.writer != nil {
		if err := w.writer.Flush(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
