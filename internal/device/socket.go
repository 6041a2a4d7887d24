package device

import "context"

// SmartSocket is a switchable mains socket that meters its power draw.
type SmartSocket struct {
	networkID string
	state     SocketState
	// power is the average power, meaningful only while state is valid.
	power  *ElectricalPower
	driver SwitchDriver
}

// NewSmartSocket creates a socket in the Unknown state with no measurement.
func NewSmartSocket(networkID string) *SmartSocket {
	return &SmartSocket{
		networkID: networkID,
		state:     SocketUnknown,
	}
}

// RestoreSmartSocket rebuilds a socket from persisted fields.
// The measurement is dropped when state is not valid.
func RestoreSmartSocket(networkID string, state SocketState, power *ElectricalPower) *SmartSocket {
	s := NewSmartSocket(networkID)
	s.ApplyReading(state, power)
	return s
}

// Kind returns KindSmartSocket.
func (s *SmartSocket) Kind() Kind { return KindSmartSocket }

// NetworkID returns the socket's network identifier.
func (s *SmartSocket) NetworkID() string { return s.networkID }

// SocketState returns the current operating state.
func (s *SmartSocket) SocketState() SocketState { return s.state }

// Descriptor returns "smart_socket: <network_id>".
func (s *SmartSocket) Descriptor() string {
	return string(KindSmartSocket) + ": " + s.networkID
}

// IsValid reports whether the state is neither Unknown nor Failure.
func (s *SmartSocket) IsValid() bool {
	return s.state.IsValid()
}

// Power returns the last measured power. ok is false while the socket is
// not valid or has never been measured.
func (s *SmartSocket) Power() (power ElectricalPower, ok bool) {
	if !s.IsValid() || s.power == nil {
		return ElectricalPower{}, false
	}
	return *s.power, true
}

// State returns "state: <State>, power: <power or ?>".
func (s *SmartSocket) State() string {
	power, ok := s.Power()
	return formatState(s.state, "power", power.String(), ok)
}

// ApplyReading records a state report from the socket. A nil power keeps
// the previous measurement; entering Unknown or Failure discards it.
func (s *SmartSocket) ApplyReading(state SocketState, power *ElectricalPower) {
	s.state = state
	if !state.IsValid() {
		s.power = nil
		return
	}
	if power != nil {
		p := *power
		s.power = &p
	}
}

// SetSwitchDriver attaches the driver used by TurnState.
func (s *SmartSocket) SetSwitchDriver(driver SwitchDriver) {
	s.driver = driver
}

// TurnState toggles the socket between Active and Inactive. A successful
// toggle drops the last power measurement until the socket reports again.
//
// It fails with a *TransitionError carrying the resulting state when:
//   - the socket is Unknown or Failure (nothing to toggle from; unchanged)
//   - no SwitchDriver is attached (unchanged)
//   - the driver rejects the command (the socket moves to Failure)
func (s *SmartSocket) TurnState(ctx context.Context) error {
	var want SocketState
	switch s.state {
	case SocketActive:
		want = SocketInactive
	case SocketInactive:
		want = SocketActive
	default:
		return &TransitionError{NetworkID: s.networkID, Want: want, Got: s.state, Err: ErrStateNotSwitchable}
	}

	if s.driver == nil {
		return &TransitionError{NetworkID: s.networkID, Want: want, Got: s.state, Err: ErrNoSwitchDriver}
	}

	if err := s.driver.SetPower(ctx, s.networkID, want == SocketActive); err != nil {
		s.ApplyReading(SocketFailure, nil)
		return &TransitionError{NetworkID: s.networkID, Want: want, Got: s.state, Err: err}
	}

	s.state = want
	s.power = nil
	return nil
}

// Accept calls v.VisitSmartSocket.
func (s *SmartSocket) Accept(v Visitor) { v.VisitSmartSocket(s) }

func (*SmartSocket) smartDevice() {}
