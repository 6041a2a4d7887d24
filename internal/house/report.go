package house

import "github.com/nerrad567/smarthouse-core/internal/device"

// CreateReport renders one line per device in ascending key order:
//
//	{ location: <name>@<location>, state: <State>, <field>: <value or ?>, <descriptor> }
func (h *SmartHouse) CreateReport() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := h.sortedIDs()
	report := make([]string, 0, len(ids))
	for _, id := range ids {
		report = append(report, formatLine(id, device.Info(h.devices[id])))
	}
	return report
}

func formatLine(id DeviceID, info device.InfoProvider) string {
	return "{ location: " + id.Label() + ", " + info.State() + ", " + info.Descriptor() + " }"
}
