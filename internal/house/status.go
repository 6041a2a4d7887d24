package house

import "github.com/nerrad567/smarthouse-core/internal/device"

// Status is a point-in-time copy of one registered device, safe to use
// after the house has moved on.
type Status struct {
	Record
	Valid bool `json:"valid"`

	// Line is the device's report line.
	Line string `json:"line"`
}

// Statuses copies every device in ascending key order.
func (h *SmartHouse) Statuses() []Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := h.sortedIDs()
	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, newStatus(id, h.devices[id]))
	}
	return statuses
}

// Status copies the device registered under (location, name).
// Returns ErrDeviceNotFound if there is none.
func (h *SmartHouse) Status(location, name string) (Status, error) {
	id := DeviceID{Location: location, Name: name}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dev, ok := h.devices[id]
	if !ok {
		return Status{}, ErrDeviceNotFound
	}
	return newStatus(id, dev), nil
}

func newStatus(id DeviceID, dev device.SmartDevice) Status {
	return Status{
		Record: NewRecord(id, dev),
		Valid:  dev.IsValid(),
		Line:   formatLine(id, device.Info(dev)),
	}
}
