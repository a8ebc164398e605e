package stepcounter

import (
	"strings"
	"testing"
	"time"
)

// mockPort 用预置数据模拟串口 (读完即 EOF)
type mockPort struct {
	*strings.Reader
	closed bool
}

func newMockPort(data string) *mockPort {
	return &mockPort{Reader: strings.NewReader(data)}
}

func (m *mockPort) Write(p []byte) (int, error) { return len(p), nil }

func (m *mockPort) Close() error {
	m.closed = true
	return nil
}

func TestParseSampleLine(t *testing.T) {
	s, err := ParseSampleLine("0.1, -0.2, 0.98, 1.5, 0, -3.25")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := Sample{AccelX: 0.1, AccelY: -0.2, AccelZ: 0.98, GyroX: 1.5, GyroY: 0, GyroZ: -3.25}
	if s != want {
		t.Errorf("sample = %+v, want %+v", s, want)
	}
}

func TestParseSampleLineErrors(t *testing.T) {
	cases := []string{
		"",                      // 空行
		"1,2,3",                 // 字段不够
		"1,2,3,4,5,6,7",         // 字段太多
		"1,2,three,4,5,6",       // 非数字
	}
	for _, line := range cases {
		if _, err := ParseSampleLine(line); err == nil {
			t.Errorf("ParseSampleLine(%q) succeeded, want error", line)
		}
	}
}

func TestSerialSourceDeliversSamples(t *testing.T) {
	// 上电垃圾 + 两个完整样本 + 半行垃圾
	data := "garbage!!\n" +
		"0.1,0.2,0.98,0,0,0\n" +
		"0.3,0.4,1.02,0,0,0\n" +
		"0.5,0.6\n"

	port := newMockPort(data)
	src := NewSerialSensorSource("/dev/null", 115200)
	src.conn = port

	samples := make(chan Sample, 10)
	if err := src.Start(func(s Sample) { samples <- s }); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var got []Sample
	for len(got) < 2 {
		select {
		case s := <-samples:
			got = append(got, s)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d samples, want 2", len(got))
		}
	}

	if got[0].AccelZ != 0.98 || got[1].AccelZ != 1.02 {
		t.Errorf("samples out of order: %+v", got)
	}

	// 垃圾行只计数不中断
	select {
	case s := <-samples:
		t.Errorf("unexpected extra sample: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}

	src.Stop()
	if !port.closed {
		t.Error("Stop did not close the port")
	}
}
