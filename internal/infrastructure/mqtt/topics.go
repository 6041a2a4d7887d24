package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the SmartHouse MQTT hierarchy.
//
//	smarthouse/state/{kind}/{network_id}      device readings (bridges -> core)
//	smarthouse/command/{kind}/{network_id}    switch commands (core -> bridges)
//	smarthouse/core/report                    retained house report
//	smarthouse/core/turn/{location}/{name}    toggle requests for a socket
//	smarthouse/system/status                  core online/offline status
const (
	TopicPrefix       = "smarthouse"
	TopicPrefixCore   = TopicPrefix + "/core"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics builds SmartHouse topic names.
//
//	topic := mqtt.Topics{}.DeviceState("temp_sensor", "ts-01")
//	// smarthouse/state/temp_sensor/ts-01
type Topics struct{}

// DeviceState returns the topic a device's readings arrive on.
func (Topics) DeviceState(kind, networkID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, kind, networkID)
}

// AllDeviceStates returns the wildcard matching every DeviceState topic.
func (Topics) AllDeviceStates() string {
	return TopicPrefix + "/state/+/+"
}

// DeviceCommand returns the topic commands for a device are sent on.
func (Topics) DeviceCommand(kind, networkID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, kind, networkID)
}

// CoreReport returns the topic the house report is published on.
func (Topics) CoreReport() string {
	return TopicPrefixCore + "/report"
}

// CoreTurn returns the topic that requests a toggle of the socket
// registered under (location, name).
func (Topics) CoreTurn(location, name string) string {
	return fmt.Sprintf("%s/turn/%s/%s", TopicPrefixCore, location, name)
}

// AllCoreTurns returns the wildcard matching every CoreTurn topic.
func (Topics) AllCoreTurns() string {
	return TopicPrefixCore + "/turn/+/+"
}

// SystemStatus returns the topic core's online status is published on.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParseDeviceState splits a DeviceState topic into its kind and network id.
// ok is false for any other topic.
func ParseDeviceState(topic string) (kind, networkID string, ok bool) {
	return splitPair(topic, TopicPrefix+"/state/")
}

// ParseCoreTurn splits a CoreTurn topic into location and name.
// ok is false for any other topic.
func ParseCoreTurn(topic string) (location, name string, ok bool) {
	return splitPair(topic, TopicPrefixCore+"/turn/")
}

// splitPair returns the two non-empty levels following prefix.
func splitPair(topic, prefix string) (first, second string, ok bool) {
	rest, found := strings.CutPrefix(topic, prefix)
	if !found {
		return "", "", false
	}
	first, second, found = strings.Cut(rest, "/")
	if !found || first == "" || second == "" || strings.Contains(second, "/") {
		return "", "", false
	}
	return first, second, true
}
