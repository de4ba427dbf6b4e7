package adapters

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"device-to-mqtt/application"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	MQTTDefaultConnectTimeout    = 30 * time.Second
	MQTTDefaultPublishTimeout    = 5 * time.Second
	MQTTDefaultSubscribeTimeout  = 5 * time.Second
	MQTTDefaultDisconnectQuiesce = 250 // milliseconds
)

var (
	ErrMQTTNotConnected     = fmt.Errorf("not connected")
	ErrMQTTConnectTimeout   = fmt.Errorf("connect timeout")
	ErrMQTTPublishTimeout   = fmt.Errorf("publish timeout")
	ErrMQTTSubscribeTimeout = fmt.Errorf("subscribe timeout")
)

type MQTTClientParams struct {
	ClientID string
	Username string
	Password string
	MQTTUrl  string

	// WillTopic, when set, gets WillPayload retained if the connection drops
	// without a disconnect.
	WillTopic   string
	WillPayload []byte

	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	SubscribeTimeout  time.Duration
	DisconnectQuiesce uint

	NewClientFunc func(options *mqtt.ClientOptions) mqtt.Client

	Log zerolog.Logger
}

func (m *MQTTClientParams) EnsureDefaults() {
	if m.ConnectTimeout == 0 {
		m.ConnectTimeout = MQTTDefaultConnectTimeout
	}

	if m.PublishTimeout == 0 {
		m.PublishTimeout = MQTTDefaultPublishTimeout
	}

	if m.SubscribeTimeout == 0 {
		m.SubscribeTimeout = MQTTDefaultSubscribeTimeout
	}

	if m.DisconnectQuiesce == 0 {
		m.DisconnectQuiesce = MQTTDefaultDisconnectQuiesce
	}

	if m.NewClientFunc == nil {
		m.NewClientFunc = mqtt.NewClient
	}
}

type MQTTClient struct {
	params MQTTClientParams

	client mqtt.Client

	// started is set from Connect until Disconnect, including while paho
	// is reconnecting; connected only while the link is up.
	started            atomic.Bool
	connected          atomic.Bool
	lost               atomic.Bool
	msgCount           atomic.Uint64
	receivedCount      atomic.Uint64
	msgCountUpdateTime atomic.Pointer[time.Time]

	// subscriptions are replayed on reconnect, the session is clean.
	subscriptions []subscription
	onReconnect   func()
	mu            sync.Mutex

	log zerolog.Logger
}

type subscription struct {
	topic   string
	qos     byte
	handler func(msg application.MQTTMessage)
}

func NewMQTTClient(params MQTTClientParams) *MQTTClient {
	params.EnsureDefaults()

	m := &MQTTClient{params: params, log: params.Log}
	m.client = m.newMqttClient()

	t := time.Unix(0, 0)
	m.msgCountUpdateTime.Store(&t)

	return m
}

func (m *MQTTClient) Connect() error {
	if m.connected.Load() {
		return nil
	}

	m.started.Store(true)
	token := m.client.Connect()
	if !token.WaitTimeout(m.params.ConnectTimeout) {
		return ErrMQTTConnectTimeout
	}
	if err := token.Error(); err != nil {
		m.started.Store(false)
		return err
	}

	m.connected.Store(true)
	return nil
}

// Disconnect stops the client, also when the link is down and paho is
// still trying to reconnect.
func (m *MQTTClient) Disconnect() {
	if !m.started.Swap(false) {
		return
	}
	m.connected.Store(false)

	m.client.Disconnect(m.params.DisconnectQuiesce)
	m.log.Info().Msg("disconnected")
}

// SetOnReconnect registers fn to run after subscriptions are restored on a
// reconnect.
func (m *MQTTClient) SetOnReconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onReconnect = fn
}

func (m *MQTTClient) IsConnected() bool {
	return m.connected.Load()
}

func (m *MQTTClient) Status() application.MQTTStatus {
	return application.MQTTStatus{
		MessageCount:      m.msgCount.Load(),
		ReceivedCount:     m.receivedCount.Load(),
		LastTimePublished: *m.msgCountUpdateTime.Load(),
		Connected:         m.IsConnected(),
	}
}

func (m *MQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	if !m.IsConnected() {
		return ErrMQTTNotConnected
	}

	token := m.client.Publish(topic, qos, retained, msg)
	if !token.WaitTimeout(m.params.PublishTimeout) {
		return ErrMQTTPublishTimeout
	}
	if err := token.Error(); err != nil {
		return err
	}

	t := time.Now()
	m.msgCountUpdateTime.Store(&t)
	m.msgCount.Add(1)
	return nil
}

func (m *MQTTClient) Subscribe(topic string, qos byte, handler func(msg application.MQTTMessage)) error {
	if !m.IsConnected() {
		return ErrMQTTNotConnected
	}

	sub := subscription{topic: topic, qos: qos, handler: handler}
	if err := m.subscribe(sub); err != nil {
		return err
	}

	m.mu.Lock()
	m.subscriptions = append(m.subscriptions, sub)
	m.mu.Unlock()
	return nil
}

func (m *MQTTClient) subscribe(sub subscription) error {
	token := m.client.Subscribe(sub.topic, sub.qos, func(client mqtt.Client, msg mqtt.Message) {
		m.receivedCount.Add(1)
		sub.handler(msg)
	})
	if !token.WaitTimeout(m.params.SubscribeTimeout) {
		return ErrMQTTSubscribeTimeout
	}
	return token.Error()
}

func (m *MQTTClient) PublishHandler(client mqtt.Client, msg mqtt.Message) {
	m.log.Debug().Str("topic", msg.Topic()).Msg("message without subscription")
}

func (m *MQTTClient) OnConnect(client mqtt.Client) {
	m.log.Info().Msgf("connected")
	m.connected.Store(true)

	if m.lost.Swap(false) {
		m.restore()
	}
}

// restore replays every subscription and runs the reconnect hook. paho calls
// OnConnect on its own goroutine, so blocking on tokens here is fine.
func (m *MQTTClient) restore() {
	m.mu.Lock()
	subscriptions := append([]subscription(nil), m.subscriptions...)
	onReconnect := m.onReconnect
	m.mu.Unlock()

	for _, sub := range subscriptions {
		if err := m.subscribe(sub); err != nil {
			m.log.Warn().Err(err).Str("topic", sub.topic).Msg("failed to restore subscription")
		}
	}
	m.log.Info().Int("subscriptions", len(subscriptions)).Msg("subscriptions restored")

	if onReconnect != nil {
		onReconnect()
	}
}

func (m *MQTTClient) OnConnectionLost(client mqtt.Client, err error) {
	m.log.Info().Msgf("connect lost: %v", err)
	m.connected.Store(false)
	m.lost.Store(true)
}

func (m *MQTTClient) newMqttClient() mqtt.Client {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(m.params.MQTTUrl)
	opts.SetClientID(m.params.ClientID)
	opts.SetUsername(m.params.Username)
	opts.SetPassword(m.params.Password)
	opts.SetConnectTimeout(m.params.ConnectTimeout)

	if m.params.WillTopic != "" {
		opts.SetBinaryWill(m.params.WillTopic, m.params.WillPayload, 1, true)
	}

	opts.SetDefaultPublishHandler(m.PublishHandler)
	opts.OnConnect = m.OnConnect
	opts.OnConnectionLost = m.OnConnectionLost

	return m.params.NewClientFunc(opts)
}

var _ application.MQTTClient = &MQTTClient{}
