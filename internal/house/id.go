package house

import "strings"

// DeviceID is the composite key of a registered device.
// IDs order by Location, then by Name.
type DeviceID struct {
	Location string
	Name     string
}

// Compare returns -1, 0 or +1 depending on whether id sorts before, equal
// to, or after other.
func (id DeviceID) Compare(other DeviceID) int {
	if c := strings.Compare(id.Location, other.Location); c != 0 {
		return c
	}
	return strings.Compare(id.Name, other.Name)
}

// Label returns "name@location", the form used in reports.
func (id DeviceID) Label() string {
	return id.Name + "@" + id.Location
}

// String implements fmt.Stringer.
func (id DeviceID) String() string {
	return id.Label()
}
