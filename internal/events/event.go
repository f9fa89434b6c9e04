// Package events fans resource-changed notifications out to dashboards and
// public pages over Redis pub/sub.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TopicAvatar   = "profile.avatar"
	TopicResume   = "profile.resume"
	TopicProjects = "projects"
)

// Topics lists every topic a client may subscribe to.
var Topics = []string{TopicAvatar, TopicResume, TopicProjects}

var ErrUnknownTopic = errors.New("unknown topic")

// Event says that a resource owned by OwnerID changed. URL is set for
// profile uploads, ResourceID for projects.
type Event struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	OwnerID    string    `json:"owner_id"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	At         time.Time `json:"at"`
}

func New(topic, ownerID, action string) Event {
	return Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		OwnerID: ownerID,
		Action:  action,
		At:      time.Now().UTC(),
	}
}

func knownTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}
