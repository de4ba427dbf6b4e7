package application

import (
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog"
)

const (
	TopicRegistryInitialCapacity = 2
	TopicRegistryGrowthStep      = 2
)

var (
	ErrRegistryFull = fmt.Errorf("topic registry full")
)

type TopicRecord struct {
	Topic   string
	Handler TopicHandler
	QoS     uint8
}

type TopicRegistryParams struct {
	HardwareID HardwareIDProvider

	// MaxTopics bounds the registry, 0 means unbounded.
	MaxTopics int

	Log zerolog.Logger
}

// TopicRegistry keeps the device's MQTT subscriptions in insertion order. It is
// not safe for concurrent use: populate it before handing it to the service.
type TopicRegistry struct {
	deviceID     string
	registration *RegistrationState

	records   []TopicRecord
	capacity  int
	maxTopics int

	log zerolog.Logger
}

func NewTopicRegistry(params TopicRegistryParams) (*TopicRegistry, error) {
	if params.HardwareID == nil {
		return nil, fmt.Errorf("HardwareID is nil")
	}
	if params.MaxTopics < 0 {
		return nil, fmt.Errorf("MaxTopics must not be negative")
	}

	id, err := params.HardwareID.HardwareID()
	if err != nil {
		return nil, fmt.Errorf("read hardware id: %w", err)
	}

	r := &TopicRegistry{
		deviceID:     FormatDeviceID(id),
		registration: &RegistrationState{},
		records:      make([]TopicRecord, 0, TopicRegistryInitialCapacity),
		capacity:     TopicRegistryInitialCapacity,
		maxTopics:    params.MaxTopics,
		log:          params.Log,
	}

	r.log.Debug().Str("device_id", r.deviceID).Msg("topic registry created")
	return r, nil
}

func (r *TopicRegistry) DeviceID() string {
	return r.deviceID
}

func (r *TopicRegistry) Registration() *RegistrationState {
	return r.registration
}

func (r *TopicRegistry) Len() int {
	return len(r.records)
}

func (r *TopicRegistry) Cap() int {
	return r.capacity
}

// At returns the i-th record in insertion order. It panics when i is out of
// range, like a slice index.
func (r *TopicRegistry) At(i int) TopicRecord {
	return r.records[i]
}

// InsertDefault inserts suffix with QoS 0.
func (r *TopicRegistry) InsertDefault(suffix string, handler TopicHandler) error {
	return r.Insert(suffix, handler, 0)
}

// Insert appends a subscription for deviceID+suffix. The qos value is stored
// as is.
func (r *TopicRegistry) Insert(suffix string, handler TopicHandler, qos uint8) error {
	if r.maxTopics > 0 && len(r.records) >= r.maxTopics {
		return fmt.Errorf("%w: %d topics", ErrRegistryFull, len(r.records))
	}

	if len(r.records) == r.capacity {
		r.grow()
	}

	r.records = append(r.records, TopicRecord{
		Topic:   r.deviceID + suffix,
		Handler: handler,
		QoS:     qos,
	})
	return nil
}

// grow moves the records to storage TopicRegistryGrowthStep records larger.
func (r *TopicRegistry) grow() {
	records := make([]TopicRecord, len(r.records), r.capacity+TopicRegistryGrowthStep)
	copy(records, r.records)
	r.records = records
	r.capacity += TopicRegistryGrowthStep

	r.log.Debug().Int("capacity", r.capacity).Int("count", len(r.records)).Msg("topic registry grown")
}

// Topics iterates over the records in insertion order. The sequence can be
// ranged over any number of times.
func (r *TopicRegistry) Topics() iter.Seq[TopicRecord] {
	return func(yield func(TopicRecord) bool) {
		for _, record := range r.records {
			if !yield(record) {
				return
			}
		}
	}
}

// Display writes every full topic name to w, one per line.
func (r *TopicRegistry) Display(w io.Writer) error {
	for record := range r.Topics() {
		if _, err := fmt.Fprintln(w, record.Topic); err != nil {
			return err
		}
	}
	return nil
}
