package mqtt

import "fmt"

// DefaultTopicPrefix is used when mqtt.topic_prefix is empty.
const DefaultTopicPrefix = "studio"

// Topics builds the studio's MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("studio")
//	topics.Reading("temp-sensor-1") // "studio/readings/temp-sensor-1"
type Topics struct {
	Prefix string
}

// NewTopics returns topic builders rooted at prefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Status returns the retained online/offline status topic (also the LWT).
//
// Example: studio/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix())
}

// Reading returns the topic for one sensor instance's readings.
//
// Example: studio/readings/temp-sensor-1
func (t Topics) Reading(instanceID string) string {
	return fmt.Sprintf("%s/readings/%s", t.prefix(), instanceID)
}

// Dispatch returns the topic for mock HTTP request/response pairs.
//
// Example: studio/dispatch
func (t Topics) Dispatch() string {
	return fmt.Sprintf("%s/dispatch", t.prefix())
}

// Logs returns the topic mirroring the simulation log stream.
//
// Example: studio/logs
func (t Topics) Logs() string {
	return fmt.Sprintf("%s/logs", t.prefix())
}

// Control returns the topic accepting a remote simulation command.
//
// Example: studio/control/start
func (t Topics) Control(action string) string {
	return fmt.Sprintf("%s/control/%s", t.prefix(), action)
}

// AllReadings matches every sensor reading topic.
//
// Pattern: studio/readings/+
func (t Topics) AllReadings() string {
	return fmt.Sprintf("%s/readings/+", t.prefix())
}

// AllControl matches every control topic.
//
// Pattern: studio/control/+
func (t Topics) AllControl() string {
	return fmt.Sprintf("%s/control/+", t.prefix())
}

// All matches every studio topic. Use with caution.
//
// Pattern: studio/#
func (t Topics) All() string {
	return fmt.Sprintf("%s/#", t.prefix())
}
