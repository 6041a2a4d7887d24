// Package bridge connects a SmartHouse to device bridges over MQTT.
//
// Ingest applies state readings published by bridges to the matching
// devices. SwitchDriver sends socket power commands back to the bridges.
// Turn toggles sockets on request, and PublishReport publishes the house
// report for dashboards.
package bridge
