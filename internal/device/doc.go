// Package device provides the device kinds known to SmartHouse Core.
//
// A device is an actuator (SmartSocket) or a sensor (TempSensor) addressed
// by a network identifier. Every kind reports its last known measurement,
// but only once its internal state is trustworthy: a device in the Unknown
// or Failure state renders a "?" in place of the measurement.
//
// # Key Types
//
//   - InfoProvider: uniform reporting contract (Descriptor, State, IsValid)
//   - SmartDevice: closed set of device kinds stored by the registry
//   - Visitor: exhaustive per-kind matching over SmartDevice
//   - SwitchDriver: command extension point used by SmartSocket.TurnState
//
// # Usage
//
//	socket := device.NewSmartSocket("7cdbac61-6c94-435a-8f15-fe366e8c0b46")
//	socket.ApplyReading(device.SocketActive, &device.ElectricalPower{ActiveWatts: 12.5})
//
//	info := device.Info(socket)
//	fmt.Println(info.Descriptor()) // smart_socket: 7cdbac61-...
//	fmt.Println(info.State())      // state: Active, power: 12.5 W, 0 var
//
// # Thread Safety
//
// Device values are not safe for concurrent use. Once a device is stored in
// a house.SmartHouse, mutate it only through SmartHouse.Update.
//
// All quantities are SI units (watts, volt-ampere reactive, kelvin).
package device
