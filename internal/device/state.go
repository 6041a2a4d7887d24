package device

import (
	"fmt"
	"strings"
)

// SocketState is the operating state of a SmartSocket.
// The string value is the wire name used in config, storage and MQTT.
type SocketState string

// SocketState constants.
const (
	SocketUnknown  SocketState = "unknown"
	SocketActive   SocketState = "active"
	SocketInactive SocketState = "inactive"
	SocketFailure  SocketState = "failure"
)

// AllSocketStates returns all valid socket states.
func AllSocketStates() []SocketState {
	return []SocketState{SocketUnknown, SocketActive, SocketInactive, SocketFailure}
}

// String returns the display name used in reports.
func (s SocketState) String() string {
	switch s {
	case SocketUnknown:
		return "Unknown"
	case SocketActive:
		return "Active"
	case SocketInactive:
		return "Inactive"
	case SocketFailure:
		return "Failure"
	default:
		return string(s)
	}
}

// IsValid reports whether measurements taken in this state can be trusted.
// Unrecognised values are treated like Unknown.
func (s SocketState) IsValid() bool {
	return s == SocketActive || s == SocketInactive
}

// ParseSocketState converts a wire or display name to a SocketState.
func ParseSocketState(name string) (SocketState, error) {
	candidate := SocketState(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range AllSocketStates() {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: socket state %q", ErrInvalidState, name)
}

// TempSensorState is the operating state of a TempSensor.
type TempSensorState string

// TempSensorState constants.
const (
	SensorUnknown TempSensorState = "unknown"
	SensorGood    TempSensorState = "good"
	SensorFailure TempSensorState = "failure"
)

// AllTempSensorStates returns all valid sensor states.
func AllTempSensorStates() []TempSensorState {
	return []TempSensorState{SensorUnknown, SensorGood, SensorFailure}
}

// String returns the display name used in reports.
func (s TempSensorState) String() string {
	switch s {
	case SensorUnknown:
		return "Unknown"
	case SensorGood:
		return "Good"
	case SensorFailure:
		return "Failure"
	default:
		return string(s)
	}
}

// IsValid reports whether measurements taken in this state can be trusted.
func (s TempSensorState) IsValid() bool {
	return s == SensorGood
}

// ParseTempSensorState converts a wire or display name to a TempSensorState.
func ParseTempSensorState(name string) (TempSensorState, error) {
	candidate := TempSensorState(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range AllTempSensorStates() {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: sensor state %q", ErrInvalidState, name)
}
