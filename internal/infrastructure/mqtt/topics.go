package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "homebase/events"

// Topics builds Homebase MQTT topics under a configurable prefix.
//
//	topics := mqtt.NewTopics("homebase/events")
//	topics.Change("rooms", "renamed")
//	// Returns: "homebase/events/rooms/renamed"
type Topics struct {
	prefix string
}

// NewTopics returns a topic builder rooted at prefix. Surrounding slashes
// are trimmed.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	return t.prefix
}

// Change returns the topic for a mutation of a record collection.
//
// Example: homebase/events/users/created
func (t Topics) Change(collection, op string) string {
	return fmt.Sprintf("%s/%s/%s", t.prefix, collection, op)
}

// AllChanges returns a wildcard topic matching every change event.
//
// Example: homebase/events/+/+
func (t Topics) AllChanges() string {
	return t.prefix + "/+/+"
}

// Status returns the retained service status topic, also used for the
// Last Will and Testament.
//
// Example: homebase/events/status
func (t Topics) Status() string {
	return t.prefix + "/status"
}

// validatePublishTopic rejects empty topics and wildcards, which are only
// legal in subscriptions.
func validatePublishTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcards not allowed when publishing: %q", ErrInvalidTopic, topic)
	}
	return nil
}
