package network

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the directory of live sessions. Lookups that find nothing
// return nil; absence is not an error.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create allocates a session for the connection and binds the two
// bidirectionally.
func (r *Registry) Create(conn *Connection) *Session {
	s := newSession(conn)
	conn.bindSession(s)

	r.mu.Lock()
	r.sessions[s.id] = s
	total := len(r.sessions)
	r.mu.Unlock()

	slog.Info("session created", "session", s.id, "connection", conn.ID(), "remote", conn.RemoteAddr(), "total", total)
	return s
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id uuid.UUID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// GetByUser returns the first session authenticated as userID, or nil.
// Linear scan; session counts are small.
func (r *Registry) GetByUser(userID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.UserID() == userID {
			return s
		}
	}
	return nil
}

// Destroy transitions the session to disconnected and removes it. Reports
// whether a session was found; destroying twice finds nothing the second
// time.
func (r *Registry) Destroy(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}

	s.SetState(StateDisconnected)
	slog.Info("session destroyed", "session", id, "total", total)
	return true
}

// All returns a snapshot of every live session.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expired returns the sessions idle longer than timeout, without removing
// them. The caller tears each one down so connection cleanup happens in
// one place.
func (r *Registry) Expired(timeout time.Duration) []*Session {
	var expired []*Session
	for _, s := range r.All() {
		if s.IsExpired(timeout) {
			expired = append(expired, s)
		}
	}
	return expired
}

// CleanupExpired destroys every expired session and returns how many were
// removed. Running it twice back to back removes the expired set once.
func (r *Registry) CleanupExpired(timeout time.Duration) int {
	expired := r.Expired(timeout)
	count := 0
	for _, s := range expired {
		if r.Destroy(s.ID()) {
			count++
		}
	}
	if count > 0 {
		slog.Info("expired sessions removed", "count", count, "timeout", timeout)
	}
	return count
}
