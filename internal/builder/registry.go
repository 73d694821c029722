package builder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/telemetry"
)

// ErrSessionNotFound covers unknown, expired and foreign sessions.
var ErrSessionNotFound = errors.New("builder session not found")

// Session binds a controller to the user who opened it.
type Session struct {
	ID         string
	UserID     string
	ResumeID   string
	Legacy     bool
	Controller *Controller
	lastSeen   time.Time
}

// Registry holds open builder sessions and closes idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

func NewRegistry(idle time.Duration) *Registry {
	if idle <= 0 {
		idle = 2 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// Open registers a controller for userID and returns its session.
func (r *Registry) Open(userID, resumeID string, legacy bool, c *Controller) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResumeID:   resumeID,
		Legacy:     legacy,
		Controller: c,
	}
	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session when userID owns it and refreshes its idle timer.
func (r *Registry) Get(id, userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

// Close disposes the session's controller and forgets it.
func (r *Registry) Close(id, userID string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()
	s.Controller.Close()
	return nil
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Controller.Close()
	}
	if len(expired) > 0 {
		telemetry.Info("builder.sessions_swept", map[string]any{"count": len(expired)})
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
