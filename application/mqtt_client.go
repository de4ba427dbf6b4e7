package application

import "time"

type MQTTStatus struct {
	MessageCount      uint64
	ReceivedCount     uint64
	LastTimePublished time.Time
	Connected         bool
}

// MQTTMessage is the subset of an incoming MQTT message handlers can see.
type MQTTMessage interface {
	Topic() string
	Payload() []byte
	Qos() byte
	Retained() bool
}

type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, msg any) error
	Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error

	Connect() error
	Disconnect()
	// SetOnReconnect registers a callback run after the client reconnects
	// and its subscriptions are restored.
	SetOnReconnect(fn func())
	IsConnected() bool
	Status() MQTTStatus
}
