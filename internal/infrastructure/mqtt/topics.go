package mqtt

import "fmt"

// Topic prefixes. Every jobtrack topic lives under "jobtrack/".
const (
	TopicPrefix       = "jobtrack"
	TopicPrefixEvents = "jobtrack/events"
	TopicPrefixSystem = "jobtrack/system"
)

// Topics provides builders for jobtrack MQTT topics.
//
//	topic := mqtt.Topics{}.JobEvent("created")
//	// Returns: "jobtrack/events/jobs/created"
type Topics struct{}

// JobEvent returns the topic for a job application lifecycle event.
//
// Example: jobtrack/events/jobs/status_changed
func (Topics) JobEvent(event string) string {
	return fmt.Sprintf("%s/jobs/%s", TopicPrefixEvents, event)
}

// AllJobEvents matches every job application event.
//
// Pattern: jobtrack/events/jobs/+
func (Topics) AllJobEvents() string {
	return fmt.Sprintf("%s/jobs/+", TopicPrefixEvents)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: jobtrack/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
