package house

import (
	"slices"
	"sync"

	"github.com/nerrad567/smarthouse-core/internal/device"
)

// Logger defines the logging interface used by SmartHouse.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SmartHouse is an ordered, uniquely keyed collection of devices.
type SmartHouse struct {
	mu      sync.RWMutex
	devices map[DeviceID]device.SmartDevice
	logger  Logger
}

// New creates an empty house.
func New() *SmartHouse {
	return &SmartHouse{
		devices: make(map[DeviceID]device.SmartDevice),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the house.
func (h *SmartHouse) SetLogger(logger Logger) {
	h.mu.Lock()
	h.logger = logger
	h.mu.Unlock()
}

// AddDevice stores dev under (location, name), replacing any device already
// registered there. The house takes ownership of dev. A nil dev is ignored.
func (h *SmartHouse) AddDevice(location, name string, dev device.SmartDevice) {
	id := DeviceID{Location: location, Name: name}

	h.mu.Lock()
	defer h.mu.Unlock()

	if isNilDevice(dev) {
		h.logger.Warn("ignoring nil device", "location", location, "name", name)
		return
	}

	if prev, ok := h.devices[id]; ok {
		h.logger.Debug("device replaced", "id", id.Label(),
			"previous", prev.Descriptor(), "current", dev.Descriptor())
	}
	h.devices[id] = dev
}

// isNilDevice also catches a nil pointer of a concrete kind held in a
// non-nil interface.
func isNilDevice(dev device.SmartDevice) bool {
	if dev == nil {
		return true
	}
	var isNil bool
	dev.Accept(device.VisitorFuncs{
		SmartSocket: func(s *device.SmartSocket) { isNil = s == nil },
		TempSensor:  func(t *device.TempSensor) { isNil = t == nil },
	})
	return isNil
}

// Device returns the device registered under (location, name).
// Returns ErrDeviceNotFound if there is none.
func (h *SmartHouse) Device(location, name string) (device.SmartDevice, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dev, ok := h.devices[DeviceID{Location: location, Name: name}]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return dev, nil
}

// RemoveDevice deletes the device registered under (location, name).
// Returns ErrDeviceNotFound if there is none.
func (h *SmartHouse) RemoveDevice(location, name string) error {
	id := DeviceID{Location: location, Name: name}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.devices[id]; !ok {
		return ErrDeviceNotFound
	}
	delete(h.devices, id)
	h.logger.Info("device removed", "id", id.Label())
	return nil
}

// Update runs fn with the device registered under id while holding the
// house's write lock. fn's error is returned unchanged.
// Returns ErrDeviceNotFound if there is no such device.
func (h *SmartHouse) Update(id DeviceID, fn func(device.SmartDevice) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dev, ok := h.devices[id]
	if !ok {
		return ErrDeviceNotFound
	}
	return fn(dev)
}

// FindByNetworkID returns the key of the device of the given kind with the
// given network identifier. When several keys hold such a device, the
// lowest key wins.
func (h *SmartHouse) FindByNetworkID(kind device.Kind, networkID string) (DeviceID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var (
		found DeviceID
		ok    bool
	)
	for id, dev := range h.devices {
		if dev.Kind() != kind || dev.NetworkID() != networkID {
			continue
		}
		if !ok || id.Compare(found) < 0 {
			found, ok = id, true
		}
	}
	return found, ok
}

// Len returns the number of registered devices.
func (h *SmartHouse) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.devices)
}

// IDs returns every key in ascending order.
func (h *SmartHouse) IDs() []DeviceID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sortedIDs()
}

// sortedIDs must be called with mu held.
func (h *SmartHouse) sortedIDs() []DeviceID {
	ids := make([]DeviceID, 0, len(h.devices))
	for id := range h.devices {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, DeviceID.Compare)
	return ids
}
