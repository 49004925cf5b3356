package network

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	// StateConnected means the client is connected but has not begun
	// authenticating.
	StateConnected State = iota
	// StateAuthenticating means a login or registration flow is underway,
	// or the user is picking a character. A failed login stays here so the
	// user can retry.
	StateAuthenticating
	// StatePlaying means the session has an authenticated user and an
	// active character.
	StatePlaying
	// StateDisconnected is terminal. Sessions in this state are removed
	// from the registry and never transition out.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StatePlaying:
		return "playing"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session binds one connection to its authentication and play state. All
// mutations refresh the activity timestamp used by the idle sweep.
type Session struct {
	id        uuid.UUID
	conn      *Connection
	createdAt time.Time

	mu           sync.Mutex
	userID       string
	characterID  string
	state        State
	lastActivity time.Time

	// Msgs carries asynchronous deliveries (broadcasts, tells) destined
	// for this session's connection. A full buffer drops the message
	// rather than stalling the sender.
	msgs chan []byte
}

func newSession(conn *Connection) *Session {
	now := time.Now()
	return &Session{
		id:           uuid.New(),
		conn:         conn,
		createdAt:    now,
		state:        StateConnected,
		lastActivity: now,
		msgs:         make(chan []byte, 64),
	}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) Conn() *Connection    { return s.conn }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Msgs() <-chan []byte  { return s.msgs }

// Deliver queues a message for asynchronous delivery to this session's
// client. It never blocks: if the session cannot keep up the message is
// dropped.
func (s *Session) Deliver(data []byte) {
	select {
	case s.msgs <- data:
	default:
		slog.Warn("session delivery queue full, dropping message", "session", s.id)
	}
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) CharacterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.characterID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SetUser records the authenticated user for this session.
func (s *Session) SetUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.lastActivity = time.Now()
	slog.Info("session user set", "session", s.id, "user", userID)
}

// SetCharacter records the active character. An empty id clears it.
func (s *Session) SetCharacter(characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characterID = characterID
	s.lastActivity = time.Now()
	slog.Info("session character set", "session", s.id, "character", characterID)
}

// SetState transitions the session. Transitions out of StateDisconnected
// are ignored; that state is terminal.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisconnected {
		return
	}
	old := s.state
	s.state = state
	s.lastActivity = time.Now()
	slog.Info("session state changed", "session", s.id, "from", old.String(), "to", state.String())
}

// Touch refreshes the activity timestamp. Called for every processed command.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IsExpired reports whether the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity) > timeout
}
