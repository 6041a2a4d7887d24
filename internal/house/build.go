package house

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
)

// Build creates a house holding the devices declared in cfg, in declaration
// order. Every device starts in the Unknown state with no measurement.
// Devices declared without a network ID get a random UUID; a saved snapshot
// loaded afterwards keeps it stable across runs.
// A nil logger leaves the house silent.
func Build(cfg config.HouseConfig, logger Logger) (*SmartHouse, error) {
	h := New()
	if logger != nil {
		h.SetLogger(logger)
	}

	for i, dc := range cfg.Devices {
		kind, err := device.ParseKind(dc.Kind)
		if err != nil {
			return nil, fmt.Errorf("house.devices[%d]: %w", i, err)
		}

		if dc.NetworkID == "" {
			dc.NetworkID = uuid.NewString()
			h.logger.Info("generated network id", "location", dc.Location, "name", dc.Name, "network_id", dc.NetworkID)
		}

		var dev device.SmartDevice
		switch kind {
		case device.KindSmartSocket:
			dev = device.NewSmartSocket(dc.NetworkID)
		case device.KindTempSensor:
			dev = device.NewTempSensor(dc.NetworkID)
		}
		h.AddDevice(dc.Location, dc.Name, dev)
	}

	h.logger.Info("house built", "name", cfg.Name, "devices", h.Len())
	return h, nil
}
