package device

import "fmt"

// Kind names a device kind. It prefixes every descriptor.
type Kind string

// Kind constants.
const (
	KindSmartSocket Kind = "smart_socket"
	KindTempSensor  Kind = "temp_sensor"
)

// AllKinds returns every supported kind.
func AllKinds() []Kind {
	return []Kind{KindSmartSocket, KindTempSensor}
}

// ParseKind converts a kind name to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range AllKinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, name)
}

// SmartDevice is the closed set of device kinds a house can hold.
// Only *SmartSocket and *TempSensor implement it.
type SmartDevice interface {
	InfoProvider

	// Kind returns the device kind.
	Kind() Kind

	// NetworkID returns the identifier the device was constructed with.
	NetworkID() string

	// Accept calls the Visitor method matching the concrete kind.
	Accept(v Visitor)

	smartDevice()
}

// Visitor has one method per device kind. Adding a kind adds a method here,
// so every implementation must handle it before the module compiles again.
type Visitor interface {
	VisitSmartSocket(s *SmartSocket)
	VisitTempSensor(t *TempSensor)
}

// Info resolves a device to its reporting contract.
func Info(d SmartDevice) InfoProvider {
	return d
}

// VisitorFuncs adapts a pair of functions to Visitor.
// Both fields must be set.
type VisitorFuncs struct {
	SmartSocket func(*SmartSocket)
	TempSensor  func(*TempSensor)
}

// VisitSmartSocket implements Visitor.
func (f VisitorFuncs) VisitSmartSocket(s *SmartSocket) { f.SmartSocket(s) }

// VisitTempSensor implements Visitor.
func (f VisitorFuncs) VisitTempSensor(t *TempSensor) { f.TempSensor(t) }

// Compile-time interface checks.
var (
	_ SmartDevice = (*SmartSocket)(nil)
	_ SmartDevice = (*TempSensor)(nil)
	_ Visitor     = VisitorFuncs{}
)
