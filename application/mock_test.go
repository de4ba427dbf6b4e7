package application

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

type staticHardwareID uint64

func (s staticHardwareID) HardwareID() (uint64, error) {
	return uint64(s), nil
}

type failingHardwareID struct{}

func (failingHardwareID) HardwareID() (uint64, error) {
	return 0, fmt.Errorf("efuse unavailable")
}

type testMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (m testMessage) Topic() string   { return m.topic }
func (m testMessage) Payload() []byte { return m.payload }
func (m testMessage) Qos() byte       { return m.qos }
func (m testMessage) Retained() bool  { return m.retained }

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	return m.Called(topic, qos, retained, msg).Error(0)
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error {
	return m.Called(topic, qos, handler).Error(0)
}

func (m *MockMQTTClient) Connect() error {
	return m.Called().Error(0)
}

func (m *MockMQTTClient) Disconnect() {
	m.Called()
}

func (m *MockMQTTClient) SetOnReconnect(fn func()) {
	m.Called(fn)
}

func (m *MockMQTTClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockMQTTClient) Status() MQTTStatus {
	return m.Called().Get(0).(MQTTStatus)
}

var _ MQTTClient = &MockMQTTClient{}
