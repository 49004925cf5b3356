package network

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
)

func newTestConn() *Connection {
	return NewConnection(newFakeTransport(), "127.0.0.1")
}

// backdate shifts a session's activity timestamp into the past.
func backdate(s *Session, d time.Duration) {
	s.mu.Lock()
	s.lastActivity = time.Now().Add(-d)
	s.mu.Unlock()
}

func TestCreateBindsBidirectionally(t *testing.T) {
	reg := NewRegistry()
	conn := newTestConn()

	s := reg.Create(conn)

	if got := reg.Get(s.ID()); got != s {
		t.Fatalf("Get returned %v, expected the created session", got)
	}
	if conn.Session() != s {
		t.Error("connection does not point back at its session")
	}
	if s.Conn() != conn {
		t.Error("session does not point at its connection")
	}
	testutil.AssertEqual(t, "state", s.State(), StateConnected)
}

func TestGetUnknownSession(t *testing.T) {
	reg := NewRegistry()
	if got := reg.Get(uuid.New()); got != nil {
		t.Errorf("expected nil for unknown id, got %v", got)
	}
}

func TestGetByUser(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create(newTestConn())
	b := reg.Create(newTestConn())
	b.SetUser("user-42")

	if got := reg.GetByUser("user-42"); got != b {
		t.Errorf("expected session %v, got %v", b.ID(), got)
	}
	if got := reg.GetByUser("nobody"); got != nil {
		t.Errorf("expected nil for unknown user, got %v", got)
	}
	_ = a
}

func TestDestroyTwice(t *testing.T) {
	reg := NewRegistry()
	s := reg.Create(newTestConn())

	testutil.AssertEqual(t, "first destroy", reg.Destroy(s.ID()), true)
	testutil.AssertEqual(t, "second destroy", reg.Destroy(s.ID()), false)

	if got := reg.Get(s.ID()); got != nil {
		t.Errorf("destroyed session still retrievable: %v", got)
	}
	testutil.AssertEqual(t, "state", s.State(), StateDisconnected)
}

func TestDisconnectedIsTerminal(t *testing.T) {
	reg := NewRegistry()
	s := reg.Create(newTestConn())
	s.SetState(StateDisconnected)
	s.SetState(StatePlaying)
	testutil.AssertEqual(t, "state", s.State(), StateDisconnected)
}

func TestCleanupExpired(t *testing.T) {
	reg := NewRegistry()
	active := reg.Create(newTestConn())
	idle := reg.Create(newTestConn())
	backdate(idle, 61*time.Minute)

	removed := reg.CleanupExpired(60 * time.Minute)

	testutil.AssertEqual(t, "removed", removed, 1)
	if reg.Get(active.ID()) == nil {
		t.Error("active session was removed")
	}
	if reg.Get(idle.ID()) != nil {
		t.Error("idle session survived cleanup")
	}
}

func TestCleanupExpiredIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	idle := reg.Create(newTestConn())
	backdate(idle, 2*time.Hour)

	testutil.AssertEqual(t, "first sweep", reg.CleanupExpired(time.Hour), 1)
	testutil.AssertEqual(t, "second sweep", reg.CleanupExpired(time.Hour), 0)
}

func TestTouchPreventsExpiry(t *testing.T) {
	reg := NewRegistry()
	s := reg.Create(newTestConn())
	backdate(s, 2*time.Hour)
	s.Touch()

	testutil.AssertEqual(t, "expired", s.IsExpired(time.Hour), false)
	testutil.AssertEqual(t, "removed", reg.CleanupExpired(time.Hour), 0)
}
