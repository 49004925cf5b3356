package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// NatsServer runs an embedded NATS broker plus an internal client
// connection. All in-world message fan-out flows through it.
type NatsServer struct {
	ns *server.Server

	mu   sync.Mutex
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
}

type NatsServerOpt func(*NatsServer)

// WithHost sets the listen host. Defaults to loopback: the broker is an
// internal bus, not a public surface.
func WithHost(host string) NatsServerOpt {
	return func(s *NatsServer) {
		s.host = host
	}
}

// WithPort sets the listen port. Zero uses the NATS default port; a
// negative port picks a random free one.
func WithPort(port int) NatsServerOpt {
	return func(s *NatsServer) {
		s.port = port
	}
}

func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(s *NatsServer) {
		s.startupTimeout = d
	}
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})

	s.ns = ns

	if err != nil {
		return nil, err
	}

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {

	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	// Connect the internal client to the address the server actually
	// bound, not the configured one. Port zero means the NATS default.
	conn, err := nats.Connect(n.ns.ClientURL())
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())

	<-ctx.Done()
	conn.Close()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	conn := n.client()
	if conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	conn := n.client()
	if conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return conn.Publish(subject, data)
}

func (n *NatsServer) client() *nats.Conn {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn
}
