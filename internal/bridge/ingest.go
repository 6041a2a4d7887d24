package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

// reading is the JSON body published on a device state topic.
//
//	{"state":"active","p_watts":12.5,"q_var":0.3}
//	{"state":"good","kelvin":294.15}
//
// Omitted measurements keep the previous value.
type reading struct {
	State  string   `json:"state"`
	PWatts *float64 `json:"p_watts"`
	QVAR   *float64 `json:"q_var"`
	Kelvin *float64 `json:"kelvin"`
}

// Ingest applies device readings to a house.
type Ingest struct {
	house  *house.SmartHouse
	logger Logger
}

// NewIngest creates an Ingest for h.
func NewIngest(h *house.SmartHouse) *Ingest {
	return &Ingest{house: h, logger: noopLogger{}}
}

// SetLogger sets the logger for accepted readings.
func (i *Ingest) SetLogger(logger Logger) {
	i.logger = logger
}

// Start subscribes to every device state topic.
func (i *Ingest) Start(sub Subscriber, qos byte) error {
	if err := sub.Subscribe(mqtt.Topics{}.AllDeviceStates(), qos, i.Handle); err != nil {
		return fmt.Errorf("subscribing to device states: %w", err)
	}
	return nil
}

// Stop unsubscribes from the device state topics. Readings arriving
// afterwards are not applied.
func (i *Ingest) Stop(sub Subscriber) error {
	if err := sub.Unsubscribe(mqtt.Topics{}.AllDeviceStates()); err != nil {
		return fmt.Errorf("unsubscribing from device states: %w", err)
	}
	return nil
}

// Handle applies one message published on a device state topic.
func (i *Ingest) Handle(topic string, payload []byte) error {
	kindName, networkID, ok := mqtt.ParseDeviceState(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	kind, err := device.ParseKind(kindName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownDevice, err)
	}

	id, ok := i.house.FindByNetworkID(kind, networkID)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownDevice, kind, networkID)
	}

	var r reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	apply, err := r.applier(kind)
	if err != nil {
		return err
	}

	err = i.house.Update(id, func(dev device.SmartDevice) error {
		dev.Accept(apply)
		return nil
	})
	if err != nil {
		return fmt.Errorf("applying reading to %s: %w", id, err)
	}

	i.logger.Debug("reading applied", "id", id.Label(), "kind", kind, "state", r.State)
	return nil
}

// applier validates r for kind and returns a visitor that records it.
func (r reading) applier(kind device.Kind) (device.Visitor, error) {
	var (
		socketState device.SocketState
		sensorState device.TempSensorState
		power       *device.ElectricalPower
		temp        *device.Temperature
		err         error
	)

	switch kind {
	case device.KindSmartSocket:
		if socketState, err = device.ParseSocketState(r.State); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if r.PWatts != nil && r.QVAR != nil {
			power = &device.ElectricalPower{ActiveWatts: *r.PWatts, ReactiveVAR: *r.QVAR}
		}
	case device.KindTempSensor:
		if sensorState, err = device.ParseTempSensorState(r.State); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if r.Kelvin != nil {
			temp = &device.Temperature{Kelvin: *r.Kelvin}
		}
	}

	return device.VisitorFuncs{
		SmartSocket: func(s *device.SmartSocket) { s.ApplyReading(socketState, power) },
		TempSensor:  func(t *device.TempSensor) { t.ApplyReading(sensorState, temp) },
	}, nil
}
