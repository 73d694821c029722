package events

import (
	"context"
	"sync"

	"resume-builder/internal/shared/telemetry"
)

// LogPublisher writes events to the structured log only.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, evt Event) error {
	telemetry.Info("events.published", map[string]any{
		"type":      evt.Type,
		"resume_id": evt.ResumeID,
		"user_id":   evt.UserID,
		"section":   evt.Section,
	})
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

var (
	_ Publisher = LogPublisher{}
	_ Publisher = (*Recorder)(nil)
)
