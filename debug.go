package stepcounter

import (
	"bufio"
	"fmt"
	"os"
)

// SignalDebugger 定义调试器接口
// 引擎只依赖这个接口，不依赖具体的文件操作
type SignalDebugger interface {
	Record(intensity, probability, peakVar float64, moving, step bool)
	Close()
}

// CsvDebugger 是 SignalDebugger 的具体实现
// 每评估一个窗口记录一行，用于离线画图调阈值
type CsvDebugger struct {
	file   *os.File
	writer *bufio.Writer
	lines  int
}

// NewCsvDebugger 创建一个新的 CSV 调试器
func NewCsvDebugger(filename string) (*CsvDebugger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	// 写入表头
	if _, err := w.WriteString("Intensity,Probability,PeakVar,Moving,Step\n"); err != nil {
		f.Close()
		return nil, err
	}

	return &CsvDebugger{file: f, writer: w}, nil
}

// Record 记录一个窗口的评估结果
func (d *CsvDebugger) Record(intensity, probability, peakVar float64, moving, step bool) {
	b2f := func(b bool) float64 {
		if b {
			return 1.0
		}
		return 0.0
	}
	fmt.Fprintf(d.writer, "%f,%f,%f,%.0f,%.0f\n", intensity, probability, peakVar, b2f(moving), b2f(step))

	d.lines++
	// 定期刷新，防止程序异常退出导致数据丢失
	if d.lines%256 == 0 {
		d.writer.Flush()
	}
}

// Close 关闭文件并刷新缓冲区
func (d *CsvDebugger) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.file != nil {
		d.file.Close()
	}
}

// NoOpDebugger 是一个空实现，用于生产环境
// 避免在核心代码中写大量的 if debugger != nil check
type NoOpDebugger struct{}

func (d *NoOpDebugger) Record(intensity, probability, peakVar float64, moving, step bool) {}
func (d *NoOpDebugger) Close()                                                           {}
