package device

import "fmt"

// InfoProvider is the reporting contract shared by every device kind.
type InfoProvider interface {
	// Descriptor returns a stable label of the form "<kind>: <network_id>".
	Descriptor() string

	// State returns "state: <State>, <field>: <measurement>" when the device
	// is valid and "state: <State>, <field>: ?" otherwise.
	State() string

	// IsValid reports whether the device state is neither Unknown nor Failure.
	IsValid() bool
}

// Placeholder replaces a measurement that cannot be trusted.
const Placeholder = "?"

// formatState applies the validity gate shared by all kinds. The
// measurement text is only used when ok is true.
func formatState(state fmt.Stringer, field, measurement string, ok bool) string {
	if !ok {
		measurement = Placeholder
	}
	return "state: " + state.String() + ", " + field + ": " + measurement
}
