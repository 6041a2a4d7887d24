package bridge

import "errors"

// Domain errors for the bridge package.
var (
	// ErrInvalidTopic is returned for topics outside the expected layout.
	ErrInvalidTopic = errors.New("bridge: invalid topic")

	// ErrUnknownDevice is returned when no registered device matches a
	// message.
	ErrUnknownDevice = errors.New("bridge: unknown device")

	// ErrInvalidPayload is returned for payloads that are not valid JSON
	// or name an unknown state.
	ErrInvalidPayload = errors.New("bridge: invalid payload")

	// ErrNotSwitchable is returned when a turn request targets a device
	// that is not a smart socket.
	ErrNotSwitchable = errors.New("bridge: device is not switchable")
)
