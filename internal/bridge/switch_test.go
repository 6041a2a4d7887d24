package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
)

func TestSwitchDriver_SetPower(t *testing.T) {
	pub := &mockPublisher{}
	driver := NewSwitchDriver(pub, 1)

	if err := driver.SetPower(context.Background(), "sock-01", true); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if err := driver.SetPower(context.Background(), "sock-01", false); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(msgs))
	}
	want := published{topic: "smarthouse/command/smart_socket/sock-01", payload: `{"on":true}`, qos: 1}
	if msgs[0] != want {
		t.Errorf("msgs[0] = %+v, want %+v", msgs[0], want)
	}
	if msgs[1].payload != `{"on":false}` {
		t.Errorf("msgs[1].payload = %s", msgs[1].payload)
	}
}

func TestSwitchDriver_Errors(t *testing.T) {
	pub := &mockPublisher{err: errBrokerDown}
	driver := NewSwitchDriver(pub, 0)

	if err := driver.SetPower(context.Background(), "sock-01", true); !errors.Is(err, errBrokerDown) {
		t.Errorf("SetPower() error = %v, want %v", err, errBrokerDown)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSwitchDriver(&mockPublisher{}, 0).SetPower(ctx, "sock-01", true); !errors.Is(err, context.Canceled) {
		t.Errorf("SetPower() error = %v, want context.Canceled", err)
	}
}

func TestAttachSwitchDriver(t *testing.T) {
	h := newTestHouse()
	driver := device.NewStaticSwitchDriver(nil)

	if n := AttachSwitchDriver(h, driver); n != 2 {
		t.Errorf("AttachSwitchDriver() = %d, want 2", n)
	}

	id := house.DeviceID{Location: "kitchen", Name: "kettle"}
	_ = h.Update(id, func(dev device.SmartDevice) error { //nolint:errcheck // device exists
		dev.(*device.SmartSocket).ApplyReading(device.SocketInactive, nil)
		return nil
	})

	if err := Turn(context.Background(), h, id); err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	cmds := driver.Commands()
	if len(cmds) != 1 || cmds[0] != (device.SwitchCommand{NetworkID: "sock-01", On: true}) {
		t.Errorf("Commands() = %+v", cmds)
	}
}
