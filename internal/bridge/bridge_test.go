package bridge

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

type published struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

// mockPublisher records messages and fails with err when set.
type mockPublisher struct {
	mu       sync.Mutex
	err      error
	messages []published
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, published{topic, string(payload), qos, retained})
	return nil
}

// PublishJSON records v encoded, at QoS 0.
func (m *mockPublisher) PublishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Publish(topic, payload, 0, retained)
}

func (m *mockPublisher) Messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.messages...)
}

// mockSubscriber captures the handler registered for each topic.
type mockSubscriber struct {
	err      error
	handlers map[string]mqtt.MessageHandler
}

func (m *mockSubscriber) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if m.err != nil {
		return m.err
	}
	if m.handlers == nil {
		m.handlers = make(map[string]mqtt.MessageHandler)
	}
	m.handlers[topic] = handler
	return nil
}

func (m *mockSubscriber) Unsubscribe(topic string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.handlers, topic)
	return nil
}

var errBrokerDown = errors.New("broker down")

func newTestHouse() *house.SmartHouse {
	h := house.New()
	h.AddDevice("kitchen", "air_temp", device.NewTempSensor("ts-01"))
	h.AddDevice("kitchen", "kettle", device.NewSmartSocket("sock-01"))
	h.AddDevice("bedroom", "lamp", device.NewSmartSocket("sock-02"))
	return h
}

// stateOf reads a device state under the house lock, so it is safe while
// MQTT handlers are running.
func stateOf(h *house.SmartHouse, location, name string) string {
	var state string
	err := h.Update(house.DeviceID{Location: location, Name: name}, func(dev device.SmartDevice) error {
		state = dev.State()
		return nil
	})
	if err != nil {
		return err.Error()
	}
	return state
}
