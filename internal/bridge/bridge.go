package bridge

import "github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"

// Publisher sends a message to the broker. *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// JSONPublisher encodes a value and publishes it at the client's QoS.
// *mqtt.Client implements it.
type JSONPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// Subscriber registers and removes message handlers. *mqtt.Client
// implements it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger defines the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

var (
	_ Publisher     = (*mqtt.Client)(nil)
	_ JSONPublisher = (*mqtt.Client)(nil)
	_ Subscriber    = (*mqtt.Client)(nil)
)
