package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

// defaultTurnTimeout bounds a single toggle, including the driver round trip.
const defaultTurnTimeout = 10 * time.Second

// Turn toggles the smart socket registered under id.
// The house stays locked while the driver runs.
func Turn(ctx context.Context, h *house.SmartHouse, id house.DeviceID) error {
	return h.Update(id, func(dev device.SmartDevice) error {
		var err error
		dev.Accept(device.VisitorFuncs{
			SmartSocket: func(s *device.SmartSocket) { err = s.TurnState(ctx) },
			TempSensor: func(*device.TempSensor) {
				err = fmt.Errorf("%w: %s is a %s", ErrNotSwitchable, id, device.KindTempSensor)
			},
		})
		return err
	})
}

// Turner serves toggle requests published on the core turn topics.
// The payload is ignored.
type Turner struct {
	house   *house.SmartHouse
	logger  Logger
	timeout time.Duration
}

// NewTurner creates a Turner for h.
func NewTurner(h *house.SmartHouse) *Turner {
	return &Turner{house: h, logger: noopLogger{}, timeout: defaultTurnTimeout}
}

// SetLogger sets the logger for completed toggles.
func (t *Turner) SetLogger(logger Logger) {
	t.logger = logger
}

// Start subscribes to every core turn topic.
func (t *Turner) Start(sub Subscriber, qos byte) error {
	if err := sub.Subscribe(mqtt.Topics{}.AllCoreTurns(), qos, t.Handle); err != nil {
		return fmt.Errorf("subscribing to turn requests: %w", err)
	}
	return nil
}

// Stop unsubscribes from the core turn topics.
func (t *Turner) Stop(sub Subscriber) error {
	if err := sub.Unsubscribe(mqtt.Topics{}.AllCoreTurns()); err != nil {
		return fmt.Errorf("unsubscribing from turn requests: %w", err)
	}
	return nil
}

// Handle toggles the socket named by topic.
func (t *Turner) Handle(topic string, _ []byte) error {
	location, name, ok := mqtt.ParseCoreTurn(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	id := house.DeviceID{Location: location, Name: name}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := Turn(ctx, t.house, id); err != nil {
		return fmt.Errorf("turning %s: %w", id, err)
	}

	t.logger.Info("socket toggled", "id", id.Label())
	return nil
}
