package Store

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// stepMessage 是发往云端的增量消息
type stepMessage struct {
	DeviceID string `json:"device_id"`
	Steps    int    `json:"steps"`
	Date     string `json:"date"`
	SentAt   int64  `json:"sent_at"`
}

// MqttStore 把步数增量以 QoS 1 发布到 MQTT broker，
// 由云端的汇总服务累加到用户的当日总数。
// 引擎侧保证每笔增量只发布一次 (成功确认后基线才前移)
type MqttStore struct {
	client   mqtt.Client
	topic    string
	deviceID string
	timeout  time.Duration
}

// NewMqttStore 连接 broker 并创建存储客户端
func NewMqttStore(broker, topic string) (*MqttStore, error) {
	deviceID := fmt.Sprintf("stepcounter-%s", uuid.New().String()[:8])

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(deviceID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		fmt.Printf("[STORE] connected to MQTT broker %s\n", broker)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		fmt.Printf("[STORE] MQTT connection lost: %v\n", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect failed: %v", token.Error())
	}

	return &MqttStore{
		client:   client,
		topic:    topic,
		deviceID: deviceID,
		timeout:  5 * time.Second,
	}, nil
}

// AddSteps 发布一笔增量。发布未确认视为失败，调用方会在
// 下一个检查点或 Stop 时重试同一笔
func (s *MqttStore) AddSteps(delta int, date string) error {
	payload, err := json.Marshal(stepMessage{
		DeviceID: s.deviceID,
		Steps:    delta,
		Date:     date,
		SentAt:   time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	token := s.client.Publish(s.topic, 1, false, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("mqtt publish timed out after %s", s.timeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish failed: %v", token.Error())
	}
	return nil
}

// Close 断开 broker 连接
func (s *MqttStore) Close() {
	s.client.Disconnect(250)
}
