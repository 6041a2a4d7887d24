package device

import (
	"errors"
	"testing"
)

func TestSocketState_IsValid(t *testing.T) {
	tests := []struct {
		state SocketState
		want  bool
	}{
		{SocketUnknown, false},
		{SocketFailure, false},
		{SocketActive, true},
		{SocketInactive, true},
		{SocketState(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("%q.IsValid() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestTempSensorState_IsValid(t *testing.T) {
	tests := []struct {
		state TempSensorState
		want  bool
	}{
		{SensorUnknown, false},
		{SensorFailure, false},
		{SensorGood, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("%q.IsValid() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestParseSocketState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SocketState
		wantErr bool
	}{
		{name: "wire name", input: "active", want: SocketActive},
		{name: "display name", input: "Inactive", want: SocketInactive},
		{name: "padded", input: "  failure ", want: SocketFailure},
		{name: "sensor-only state", input: "good", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSocketState(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Errorf("ParseSocketState(%q) error = %v, want ErrInvalidState", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSocketState(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSocketState(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTempSensorState(t *testing.T) {
	if got, err := ParseTempSensorState("GOOD"); err != nil || got != SensorGood {
		t.Errorf("ParseTempSensorState(GOOD) = %q, %v", got, err)
	}
	if _, err := ParseTempSensorState("active"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ParseTempSensorState(active) error = %v, want ErrInvalidState", err)
	}
}

func TestStateDisplayNames(t *testing.T) {
	want := map[string]string{
		SocketUnknown.String():  "Unknown",
		SocketActive.String():   "Active",
		SocketInactive.String(): "Inactive",
		SocketFailure.String():  "Failure",
		SensorGood.String():     "Good",
	}
	for got, expected := range want {
		if got != expected {
			t.Errorf("display name = %q, want %q", got, expected)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("light_dimmer"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ParseKind(light_dimmer) error = %v, want ErrInvalidKind", err)
	}
}
