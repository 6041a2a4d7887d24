package house

import "errors"

// Domain errors for the house package.
var (
	// ErrDeviceNotFound is returned when no device is registered under a key.
	ErrDeviceNotFound = errors.New("house: device not found")

	// ErrInvalidRecord is returned when a stored record cannot be turned
	// back into a device.
	ErrInvalidRecord = errors.New("house: invalid record")
)
