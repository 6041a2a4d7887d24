package device

import (
	"errors"
	"fmt"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrTransitionFailed) {
//	    // the socket did not reach the requested state
//	}
var (
	// ErrTransitionFailed is matched by every TransitionError.
	ErrTransitionFailed = errors.New("device: state transition failed")

	// ErrNoSwitchDriver is returned when a socket has no SwitchDriver attached.
	ErrNoSwitchDriver = errors.New("device: no switch driver")

	// ErrStateNotSwitchable is returned when toggling from a state with no
	// defined opposite (Unknown, Failure).
	ErrStateNotSwitchable = errors.New("device: state not switchable")

	// ErrInvalidState is returned when a state name is not recognised.
	ErrInvalidState = errors.New("device: invalid state")

	// ErrInvalidKind is returned when a kind name is not recognised.
	ErrInvalidKind = errors.New("device: invalid kind")
)

// TransitionError reports a socket transition that did not reach the
// requested state. Got is the state the socket is in after the attempt.
// Want is empty when no target state exists for the current state.
type TransitionError struct {
	NetworkID string
	Want      SocketState
	Got       SocketState
	Err       error
}

func (e *TransitionError) Error() string {
	var msg string
	if e.Want == "" {
		msg = fmt.Sprintf("device: smart socket %s: cannot switch from %s", e.NetworkID, e.Got)
	} else {
		msg = fmt.Sprintf("device: smart socket %s: wanted %s, got %s", e.NetworkID, e.Want, e.Got)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransitionFailed.
func (e *TransitionError) Is(target error) bool {
	return target == ErrTransitionFailed
}
