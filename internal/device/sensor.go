package device

// TempSensor is a temperature sensor.
type TempSensor struct {
	networkID string
	state     TempSensorState
	// temperature is the average reading, meaningful only while state is valid.
	temperature *Temperature
}

// NewTempSensor creates a sensor in the Unknown state with no measurement.
func NewTempSensor(networkID string) *TempSensor {
	return &TempSensor{
		networkID: networkID,
		state:     SensorUnknown,
	}
}

// RestoreTempSensor rebuilds a sensor from persisted fields.
// The measurement is dropped when state is not valid.
func RestoreTempSensor(networkID string, state TempSensorState, t *Temperature) *TempSensor {
	s := NewTempSensor(networkID)
	s.ApplyReading(state, t)
	return s
}

// Kind returns KindTempSensor.
func (t *TempSensor) Kind() Kind { return KindTempSensor }

// NetworkID returns the sensor's network identifier.
func (t *TempSensor) NetworkID() string { return t.networkID }

// SensorState returns the current operating state.
func (t *TempSensor) SensorState() TempSensorState { return t.state }

// Descriptor returns "temp_sensor: <network_id>".
func (t *TempSensor) Descriptor() string {
	return string(KindTempSensor) + ": " + t.networkID
}

// IsValid reports whether the state is neither Unknown nor Failure.
func (t *TempSensor) IsValid() bool {
	return t.state.IsValid()
}

// Temperature returns the last measured temperature. ok is false while the
// sensor is not valid or has never been measured.
func (t *TempSensor) Temperature() (temp Temperature, ok bool) {
	if !t.IsValid() || t.temperature == nil {
		return Temperature{}, false
	}
	return *t.temperature, true
}

// State returns "state: <State>, temp: <temperature or ?>".
func (t *TempSensor) State() string {
	temp, ok := t.Temperature()
	return formatState(t.state, "temp", temp.String(), ok)
}

// ApplyReading records a state report from the sensor. A nil temperature
// keeps the previous measurement; entering Unknown or Failure discards it.
func (t *TempSensor) ApplyReading(state TempSensorState, temp *Temperature) {
	t.state = state
	if !state.IsValid() {
		t.temperature = nil
		return
	}
	if temp != nil {
		v := *temp
		t.temperature = &v
	}
}

// Accept calls v.VisitTempSensor.
func (t *TempSensor) Accept(v Visitor) { v.VisitTempSensor(t) }

func (*TempSensor) smartDevice() {}
