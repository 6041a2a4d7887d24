package device

import (
	"context"
	"sync"
)

// SwitchDriver delivers a power command to a physical smart socket.
// It returns nil only when the socket confirmed the requested state.
type SwitchDriver interface {
	SetPower(ctx context.Context, networkID string, on bool) error
}

// SwitchFunc adapts an ordinary function to SwitchDriver.
type SwitchFunc func(ctx context.Context, networkID string, on bool) error

// SetPower calls f.
func (f SwitchFunc) SetPower(ctx context.Context, networkID string, on bool) error {
	return f(ctx, networkID, on)
}

// SwitchCommand is a command seen by a StaticSwitchDriver.
type SwitchCommand struct {
	NetworkID string
	On        bool
}

// StaticSwitchDriver answers every command with a fixed outcome.
// It is used for simulation and tests where no hardware is attached.
type StaticSwitchDriver struct {
	mu       sync.Mutex
	err      error
	commands []SwitchCommand
}

// NewStaticSwitchDriver returns a driver that fails every command with err,
// or succeeds when err is nil.
func NewStaticSwitchDriver(err error) *StaticSwitchDriver {
	return &StaticSwitchDriver{err: err}
}

// SetPower records the command and returns the configured outcome.
func (d *StaticSwitchDriver) SetPower(ctx context.Context, networkID string, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, SwitchCommand{NetworkID: networkID, On: on})
	return d.err
}

// SetOutcome changes the error returned by later commands.
func (d *StaticSwitchDriver) SetOutcome(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// Commands returns a copy of the commands received so far.
func (d *StaticSwitchDriver) Commands() []SwitchCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SwitchCommand, len(d.commands))
	copy(out, d.commands)
	return out
}
