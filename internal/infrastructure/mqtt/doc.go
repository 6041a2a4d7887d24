// Package mqtt connects SmartHouse Core to an MQTT broker.
//
// Device bridges publish readings on smarthouse/state/{kind}/{network_id}
// and receive switch commands on smarthouse/command/{kind}/{network_id}.
// Core publishes the house report, retained, on smarthouse/core/report and
// its own status on smarthouse/system/status (with a last will so
// subscribers notice a crash).
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceStates(), 1, handler)
package mqtt
