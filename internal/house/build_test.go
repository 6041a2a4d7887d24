package house

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
)

func TestBuild(t *testing.T) {
	cfg := config.HouseConfig{
		Name: "test",
		Devices: []config.DeviceConfig{
			{Location: "kitchen", Name: "air_temp", Kind: "temp_sensor", NetworkID: "ts-01"},
			{Location: "kitchen", Name: "plug", Kind: "smart_socket", NetworkID: "sock-01"},
			{Location: "kitchen", Name: "plug", Kind: "smart_socket", NetworkID: "sock-02"},
		},
	}

	h, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	dev, err := h.Device("kitchen", "plug")
	if err != nil {
		t.Fatalf("Device() error = %v", err)
	}
	if dev.NetworkID() != "sock-02" {
		t.Errorf("NetworkID() = %q, want later declaration to win", dev.NetworkID())
	}
	if dev.IsValid() {
		t.Error("new device should not be valid")
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	cfg := config.HouseConfig{
		Devices: []config.DeviceConfig{{Location: "hall", Name: "x", Kind: "toaster"}},
	}

	if _, err := Build(cfg, nil); !errors.Is(err, device.ErrInvalidKind) {
		t.Errorf("Build() error = %v, want ErrInvalidKind", err)
	}
}

func TestBuild_GeneratesNetworkID(t *testing.T) {
	cfg := config.HouseConfig{
		Devices: []config.DeviceConfig{
			{Location: "hall", Name: "plug", Kind: "smart_socket"},
			{Location: "hall", Name: "thermo", Kind: "temp_sensor"},
		},
	}

	h, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, st := range h.Statuses() {
		id := st.NetworkID
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("%s@%s network id %q is not a UUID: %v", st.Name, st.Location, id, err)
		}
		if seen[id] {
			t.Errorf("network id %q assigned twice", id)
		}
		seen[id] = true
	}
}
