package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypeRelease WebhookEventType = "release"
	EventTypePush    WebhookEventType = "push"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g. published)
	Repository string           // Repository full name
	Sender     string           // Sender username
	Ref        string           // Git ref for push events
	Tag        string           // Release tag extracted from the payload
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsReleaseTrigger reports whether this event should start a pipeline run.
// Release "published" events and pushes of tag refs both qualify.
func (e *WebhookEvent) IsReleaseTrigger() bool {
	switch e.Type {
	case EventTypeRelease:
		return e.Action == "published" && e.Tag != ""
	case EventTypePush:
		return strings.HasPrefix(e.Ref, "refs/tags/") && e.Tag != ""
	default:
		return false
	}
}
