package application

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TopicHandler is invoked for every message received on a registered topic.
// The registry stores handlers but never calls them.
type TopicHandler func(msg MQTTMessage)

const (
	TopicActionLog      = "log"
	TopicActionRegister = "register"
)

var (
	ErrUnknownAction = fmt.Errorf("unknown topic action")
)

// TopicSpec describes one subscription before it is namespaced by the device id.
type TopicSpec struct {
	Suffix string
	QoS    uint8
	Action string
}

func LogHandler(log zerolog.Logger) TopicHandler {
	return func(msg MQTTMessage) {
		log.Info().
			Str("topic", msg.Topic()).
			Uint8("qos", msg.Qos()).
			Bool("retained", msg.Retained()).
			Bytes("payload", msg.Payload()).
			Msg("message received")
	}
}

func RegistrationHandler(state *RegistrationState, log zerolog.Logger) TopicHandler {
	return func(msg MQTTMessage) {
		if state.MarkRegistered() {
			log.Info().Str("topic", msg.Topic()).Msg("device registered")
		}
	}
}

// DefaultTopicHandlers returns the built-in actions bound to registry.
func DefaultTopicHandlers(registry *TopicRegistry, log zerolog.Logger) map[string]TopicHandler {
	return map[string]TopicHandler{
		TopicActionLog:      LogHandler(log),
		TopicActionRegister: RegistrationHandler(registry.Registration(), log),
	}
}

// PopulateRegistry inserts specs in order. An empty action means TopicActionLog.
func PopulateRegistry(registry *TopicRegistry, specs []TopicSpec, handlers map[string]TopicHandler) error {
	for _, spec := range specs {
		action := spec.Action
		if action == "" {
			action = TopicActionLog
		}

		handler, ok := handlers[action]
		if !ok {
			return fmt.Errorf("%w: %q for topic %q", ErrUnknownAction, action, spec.Suffix)
		}

		if err := registry.Insert(spec.Suffix, handler, spec.QoS); err != nil {
			return err
		}
	}
	return nil
}
