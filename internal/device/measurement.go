package device

import "strconv"

// ElectricalPower is the average power drawn through a smart socket.
type ElectricalPower struct {
	// ActiveWatts is the active power in watts.
	ActiveWatts float64 `json:"p_watts"`
	// ReactiveVAR is the reactive power in volt-ampere reactive.
	ReactiveVAR float64 `json:"q_var"`
}

// String renders the power as "<p> W, <q> var".
func (p ElectricalPower) String() string {
	return formatFloat(p.ActiveWatts) + " W, " + formatFloat(p.ReactiveVAR) + " var"
}

// Temperature is an absolute temperature in kelvin.
type Temperature struct {
	Kelvin float64 `json:"kelvin"`
}

// String renders the temperature as "<t> K".
func (t Temperature) String() string {
	return formatFloat(t.Kelvin) + " K"
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
