// Package house provides SmartHouse, the registry of every device in a home.
//
// Devices are keyed by a composite DeviceID (location, name). Keys are unique:
// adding a device under an existing key replaces the previous device. The
// report lists every device in ascending (location, name) order, regardless
// of the order devices were added in.
//
// # Usage
//
//	h := house.New()
//	h.SetLogger(log)
//
//	h.AddDevice("kitchen", "air_temp", device.NewTempSensor("5eeecd91-..."))
//	h.AddDevice("bedroom", "air_temp", device.NewTempSensor("ee1d9905-..."))
//
//	for _, line := range h.CreateReport() {
//	    fmt.Println(line)
//	}
//	// { location: air_temp@bedroom, state: Unknown, temp: ?, temp_sensor: ee1d9905-... }
//	// { location: air_temp@kitchen, state: Unknown, temp: ?, temp_sensor: 5eeecd91-... }
//
// # Persistence
//
// SaveTo and LoadFrom copy the registry to and from a Repository.
// SQLiteRepository stores one row per device in the devices table.
//
// # Thread Safety
//
// SmartHouse is safe for concurrent use. Devices handed to AddDevice belong
// to the house afterwards; change them only through Update.
package house
