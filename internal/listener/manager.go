package listener

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/waystone-mud/waystone/internal/engine"
	"github.com/waystone-mud/waystone/internal/network"
)

const DefaultMaxPerIP = 3

// ConnectionManager funnels accepted transports into the engine, enforcing
// the per-IP connection cap before a session is created.
type ConnectionManager struct {
	engine   *engine.Engine
	maxPerIP int

	mu    sync.Mutex
	perIP map[string]int
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithMaxPerIP sets how many simultaneous connections a single address may
// hold. Zero disables the cap.
func WithMaxPerIP(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.maxPerIP = n
	}
}

func NewConnectionManager(e *engine.Engine, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		engine:   e,
		maxPerIP: DefaultMaxPerIP,
		perIP:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AcceptConnection runs one client for its whole lifetime. It blocks until
// the client is gone.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, rw io.ReadWriter) {
	remoteAddr := remoteAddrOf(rw)

	if !m.acquire(remoteAddr) {
		slog.WarnContext(ctx, "connection rejected, per-ip cap reached", "remote", remoteAddr, "cap", m.maxPerIP)
		rw.Write([]byte("Too many connections from your address. Try again later.\r\n"))
		return
	}
	defer m.release(remoteAddr)

	conn := network.NewConnection(rw, remoteAddr)
	m.engine.HandleConnection(ctx, conn)
}

// acquire counts the address in, reporting false when it is at the cap.
func (m *ConnectionManager) acquire(remoteAddr string) bool {
	if m.maxPerIP <= 0 {
		return true
	}
	ip := ipOf(remoteAddr)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perIP[ip] >= m.maxPerIP {
		return false
	}
	m.perIP[ip]++
	return true
}

func (m *ConnectionManager) release(remoteAddr string) {
	if m.maxPerIP <= 0 {
		return
	}
	ip := ipOf(remoteAddr)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perIP[ip] <= 1 {
		delete(m.perIP, ip)
	} else {
		m.perIP[ip]--
	}
}

func remoteAddrOf(rw io.ReadWriter) string {
	if addressed, ok := rw.(interface{ RemoteAddr() net.Addr }); ok {
		return addressed.RemoteAddr().String()
	}
	return "unknown"
}

// ipOf strips the port so v4 and v6 addresses count per host.
func ipOf(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
