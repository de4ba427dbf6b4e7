package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

const (
	DeviceServiceDefaultReportInterval = 30 * time.Second

	StatusTopicSuffix = "/status"
	StatusQoS         = byte(1)

	maxQoS = 2
)

var (
	ErrInvalidQoS = fmt.Errorf("invalid qos")
)

// DeviceStatus is published retained on the device status topic.
type DeviceStatus struct {
	DeviceID   string   `json:"deviceId"`
	Online     bool     `json:"online"`
	Registered bool     `json:"registered"`
	Topics     []string `json:"topics"`
}

func StatusTopic(deviceID string) string {
	return deviceID + StatusTopicSuffix
}

func NewDeviceStatus(registry *TopicRegistry, online bool) DeviceStatus {
	status := DeviceStatus{
		DeviceID:   registry.DeviceID(),
		Online:     online,
		Registered: registry.Registration().Registered(),
		Topics:     make([]string, 0, registry.Len()),
	}
	for record := range registry.Topics() {
		status.Topics = append(status.Topics, record.Topic)
	}
	return status
}

type DeviceService interface {
	Run(ctx context.Context) error
}

type DeviceServiceParams struct {
	Registry   *TopicRegistry
	MQTTClient MQTTClient

	ReportInterval time.Duration

	Log zerolog.Logger
}

type deviceService struct {
	params DeviceServiceParams

	log zerolog.Logger
}

func NewDeviceService(params DeviceServiceParams) (DeviceService, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("Registry is nil")
	}
	if params.MQTTClient == nil {
		return nil, fmt.Errorf("MQTTClient is nil")
	}
	if params.ReportInterval == 0 {
		params.ReportInterval = DeviceServiceDefaultReportInterval
	}
	return &deviceService{params: params, log: params.Log}, nil
}

func (t *deviceService) Run(ctx context.Context) error {
	registry := t.params.Registry
	client := t.params.MQTTClient

	if err := validateQoS(registry); err != nil {
		return err
	}

	client.SetOnReconnect(func() {
		if err := t.publishStatus(true); err != nil {
			t.log.Warn().Err(err).Msg("failed to republish online status")
		}
	})

	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Disconnect()

	if err := t.publishStatus(true); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	for record := range registry.Topics() {
		if err := client.Subscribe(record.Topic, record.QoS, t.dispatch(record)); err != nil {
			return fmt.Errorf("subscribe %s: %w", record.Topic, err)
		}
		t.log.Info().Str("topic", record.Topic).Uint8("qos", record.QoS).Msg("subscribed")
	}

	g, gCtx := errgroup.WithContext(ctx)

	// mqtt client report
	g.Go(func() error {
		ticker := time.NewTicker(t.params.ReportInterval)
		defer ticker.Stop()

		lastStatus := client.Status()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				newStatus := client.Status()
				t.log.Info().
					Uint64("published", newStatus.MessageCount-lastStatus.MessageCount).
					Uint64("received", newStatus.ReceivedCount-lastStatus.ReceivedCount).
					Bool("is_connected", newStatus.Connected).
					Bool("registered", registry.Registration().Registered()).
					Time("last_time_published", newStatus.LastTimePublished).
					Msg("mqtt report")
				lastStatus = newStatus
			}
		}
	})

	err := g.Wait()

	if pubErr := t.publishStatus(false); pubErr != nil {
		t.log.Warn().Err(pubErr).Msg("failed to publish offline status")
	}
	return err
}

func (t *deviceService) publishStatus(online bool) error {
	registry := t.params.Registry

	payload, err := json.Marshal(NewDeviceStatus(registry, online))
	if err != nil {
		return err
	}

	return t.params.MQTTClient.Publish(StatusTopic(registry.DeviceID()), StatusQoS, true, payload)
}

// dispatch shields the client from handler panics.
func (t *deviceService) dispatch(record TopicRecord) func(msg MQTTMessage) {
	return func(msg MQTTMessage) {
		if record.Handler == nil {
			t.log.Debug().Str("topic", record.Topic).Msg("no handler registered")
			return
		}

		var pc panics.Catcher
		pc.Try(func() { record.Handler(msg) })
		if r := pc.Recovered(); r != nil {
			t.log.Error().
				Str("topic", record.Topic).
				Interface("panic", r.Value).
				Str("stack", string(r.Stack)).
				Msg("topic handler panicked")
		}
	}
}

func validateQoS(registry *TopicRegistry) error {
	for record := range registry.Topics() {
		if record.QoS > maxQoS {
			return fmt.Errorf("%w: %d for topic %s", ErrInvalidQoS, record.QoS, record.Topic)
		}
	}
	return nil
}
