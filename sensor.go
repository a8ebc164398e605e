package stepcounter

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// SampleCallback 定义样本推送回调
type SampleCallback func(s Sample)

// SensorSource 定义传感器数据源的契约：推模式交付样本。
// 引擎启动时注册一次回调，停止时注销
type SensorSource interface {
	Start(cb SampleCallback) error
	Stop()
}

// SerialPort 定义串口操作接口，方便测试 Mock
type SerialPort interface {
	io.ReadWriteCloser
}

// SerialSensorSource 从串口连接的 IMU 板读取实时样本。
// 线协议：每行一个样本，6 个逗号分隔的浮点数
// "ax,ay,az,gx,gy,gz"，板端按标称采样率发送
type SerialSensorSource struct {
	Port     string
	BaudRate int

	conn    SerialPort
	done    chan struct{}
	dropped int64
}

// NewSerialSensorSource 创建串口数据源
func NewSerialSensorSource(port string, baudRate int) *SerialSensorSource {
	return &SerialSensorSource{
		Port:     port,
		BaudRate: baudRate,
	}
}

// Start 打开串口并启动读取循环
func (s *SerialSensorSource) Start(cb SampleCallback) error {
	if s.conn == nil {
		config := &serial.Config{
			Name:        s.Port,
			Baud:        s.BaudRate,
			ReadTimeout: time.Millisecond * 500,
		}
		conn, err := serial.OpenPort(config)
		if err != nil {
			return fmt.Errorf("failed to open sensor port %s: %v", s.Port, err)
		}
		s.conn = conn
	}

	s.done = make(chan struct{})
	go s.readLoop(cb)
	return nil
}

// Stop 停止读取并关闭串口
func (s *SerialSensorSource) Stop() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// readLoop 逐行读取并解析样本
func (s *SerialSensorSource) readLoop(cb SampleCallback) {
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		sample, err := ParseSampleLine(scanner.Text())
		if err != nil {
			// 串口上电瞬间常有半行垃圾，丢弃即可
			s.dropped++
			if s.dropped%100 == 1 {
				log.Printf("[SENSOR] dropped malformed line (%d total): %v", s.dropped, err)
			}
			continue
		}
		cb(sample)
	}
}

// ParseSampleLine 解析一行 6 通道 CSV 样本
func ParseSampleLine(line string) (Sample, error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, ",")
	if len(fields) != NumChannels {
		return Sample{}, fmt.Errorf("want %d fields, got %d", NumChannels, len(fields))
	}

	var vals [NumChannels]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("field %d: %v", i, err)
		}
		vals[i] = v
	}

	return Sample{
		AccelX: vals[0], AccelY: vals[1], AccelZ: vals[2],
		GyroX: vals[3], GyroY: vals[4], GyroZ: vals[5],
	}, nil
}
