package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

// switchCommand is the JSON body published on a socket command topic.
type switchCommand struct {
	On bool `json:"on"`
}

// SwitchDriver sends socket power commands over MQTT. A command counts as
// delivered once the broker accepts it.
type SwitchDriver struct {
	pub Publisher
	qos byte
}

// NewSwitchDriver creates a SwitchDriver publishing through pub.
func NewSwitchDriver(pub Publisher, qos byte) *SwitchDriver {
	return &SwitchDriver{pub: pub, qos: qos}
}

// SetPower publishes {"on":<on>} to the socket's command topic.
func (d *SwitchDriver) SetPower(ctx context.Context, networkID string, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(switchCommand{On: on})
	if err != nil {
		return fmt.Errorf("encoding switch command: %w", err)
	}

	topic := mqtt.Topics{}.DeviceCommand(string(device.KindSmartSocket), networkID)
	if err := d.pub.Publish(topic, payload, d.qos, false); err != nil {
		return fmt.Errorf("sending switch command: %w", err)
	}
	return nil
}

// AttachSwitchDriver sets driver on every smart socket in h and returns
// how many sockets it was attached to.
func AttachSwitchDriver(h *house.SmartHouse, driver device.SwitchDriver) int {
	attached := 0
	for _, id := range h.IDs() {
		_ = h.Update(id, func(dev device.SmartDevice) error { //nolint:errcheck // id came from IDs
			dev.Accept(device.VisitorFuncs{
				SmartSocket: func(s *device.SmartSocket) {
					s.SetSwitchDriver(driver)
					attached++
				},
				TempSensor: func(*device.TempSensor) {},
			})
			return nil
		})
	}
	return attached
}

var _ device.SwitchDriver = (*SwitchDriver)(nil)
