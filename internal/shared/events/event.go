package events

import (
	"context"
	"encoding/json"
	"time"

	"resume-builder/internal/shared/telemetry"
)

// Event types published by the builder.
const (
	ResumeCreated      = "resume.created"
	ResumeSectionSaved = "resume.section_saved"
	ResumeExported     = "resume.exported"
)

const schemaVersion = 1

// Event is the payload delivered to downstream consumers.
type Event struct {
	Type       string            `json:"type"`
	ResumeID   string            `json:"resumeId"`
	UserID     string            `json:"userId,omitempty"`
	Section    string            `json:"section,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Version    int               `json:"version"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// New stamps an event with the current time and schema version.
func New(eventType, resumeID, userID string) Event {
	return Event{
		Type:       eventType,
		ResumeID:   resumeID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Version:    schemaVersion,
	}
}

// Encode returns the JSON wire form.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

// Decode parses the JSON wire form.
func Decode(payload []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Emit publishes evt and logs a failure instead of returning it. Event
// delivery never fails the user-facing operation that produced it.
func Emit(ctx context.Context, pub Publisher, evt Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"type":      evt.Type,
			"resume_id": evt.ResumeID,
			"error":     err,
		})
	}
}
