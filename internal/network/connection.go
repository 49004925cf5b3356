package network

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Control bytes recognized during line assembly.
const (
	byteInterrupt = 0x03 // ETX, ctrl-C
	byteBackspace = 0x08
	byteDelete    = 0x7f
	byteLF        = 0x0a
	byteCR        = 0x0d
	printableMin  = 0x20
)

const DefaultReadTimeout = 5 * time.Minute

var (
	// ErrClosed is returned when reading from a connection that is already closed.
	ErrClosed = errors.New("connection closed")
	// ErrReadTimeout is returned when no input arrives within the read timeout.
	ErrReadTimeout = errors.New("read timeout")
	// ErrInterrupted is returned when the client sends an interrupt byte mid-line.
	ErrInterrupted = errors.New("read interrupted")
	// ErrConnectionLost is returned when the transport fails mid-read.
	ErrConnectionLost = errors.New("connection lost")
)

// Connection wraps a line-oriented client transport. It owns the transport
// exclusively: reads go through ReadLine, writes through Send, and once
// Close has been called (or the transport fails) all operations are no-ops.
type Connection struct {
	id         uuid.UUID
	remoteAddr string
	createdAt  time.Time

	rw          io.ReadWriter
	readTimeout time.Duration

	bytes   chan byte
	readErr chan error
	lastCR  bool

	mu      sync.Mutex
	closed  bool
	session *Session
}

// ConnectionOpt configures a Connection.
type ConnectionOpt func(*Connection)

// WithReadTimeout overrides the inactivity timeout applied to ReadLine.
func WithReadTimeout(d time.Duration) ConnectionOpt {
	return func(c *Connection) {
		c.readTimeout = d
	}
}

// NewConnection wraps a transport and starts the read pump. The remoteAddr
// is informational only.
func NewConnection(rw io.ReadWriter, remoteAddr string, opts ...ConnectionOpt) *Connection {
	c := &Connection{
		id:          uuid.New(),
		remoteAddr:  remoteAddr,
		createdAt:   time.Now(),
		rw:          rw,
		readTimeout: DefaultReadTimeout,
		bytes:       make(chan byte, 256),
		readErr:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.pump()

	slog.Debug("connection created", "connection", c.id, "remote", remoteAddr)
	return c
}

// pump moves bytes from the transport into the read channel so ReadLine can
// apply its own timeout without touching transport deadlines.
func (c *Connection) pump() {
	buf := make([]byte, 1)
	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			c.bytes <- buf[0]
		}
		if err != nil {
			c.readErr <- err
			return
		}
	}
}

func (c *Connection) ID() uuid.UUID      { return c.id }
func (c *Connection) RemoteAddr() string { return c.remoteAddr }
func (c *Connection) CreatedAt() time.Time {
	return c.createdAt
}

// Session returns the session bound to this connection, if any.
func (c *Connection) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Connection) bindSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Closed reports whether the connection has been closed.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Send writes text to the client, normalizing bare \n to \r\n. Sending on a
// closed connection is a logged no-op, and a transport failure marks the
// connection closed without surfacing an error: callers learn of the loss on
// their next read.
func (c *Connection) Send(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		slog.Debug("send on closed connection", "connection", c.id)
		return
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", "\r\n")

	if _, err := c.rw.Write([]byte(normalized)); err != nil {
		slog.Warn("send failed", "connection", c.id, "error", err)
		c.closeLocked()
	}
}

// SendLine writes text followed by a line terminator.
func (c *Connection) SendLine(text string) {
	c.Send(text + "\n")
}

// ReadLine assembles one line of input byte by byte. Backspace and delete
// edit the in-progress buffer (echoing an erase sequence when echo is on),
// an interrupt byte cancels the read, and bytes below the printable
// threshold are dropped. The returned line is whitespace-trimmed. Timeout,
// transport failure, and interrupt all close the connection.
func (c *Connection) ReadLine(echo bool) (string, error) {
	if c.Closed() {
		return "", ErrClosed
	}

	timer := time.NewTimer(c.readTimeout)
	defer timer.Stop()

	var buf []byte
	for {
		select {
		case b := <-c.bytes:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.readTimeout)

			// Telnet sends \r\n, an SSH pty sends bare \r. Either ends
			// the line; a \n directly after \r is swallowed.
			if b == byteLF && c.lastCR {
				c.lastCR = false
				continue
			}
			c.lastCR = b == byteCR

			switch {
			case b == byteCR || b == byteLF:
				if echo {
					c.Send("\n")
				}
				return strings.TrimSpace(string(buf)), nil

			case b == byteBackspace || b == byteDelete:
				if len(buf) > 0 {
					buf = buf[:len(buf)-1]
					if echo {
						c.Send("\b \b")
					}
				}

			case b == byteInterrupt:
				slog.Debug("read interrupted", "connection", c.id)
				c.Close()
				return "", ErrInterrupted

			case b >= printableMin:
				buf = append(buf, b)
				if echo {
					c.Send(string(b))
				}
			}

		case err := <-c.readErr:
			slog.Debug("read failed", "connection", c.id, "error", err)
			c.Close()
			return "", errors.Join(ErrConnectionLost, err)

		case <-timer.C:
			slog.Info("read timeout", "connection", c.id)
			c.Close()
			return "", ErrReadTimeout
		}
	}
}

// ReadPassword reads a line with echo disabled.
func (c *Connection) ReadPassword() (string, error) {
	return c.ReadLine(false)
}

// Close marks the connection closed and closes the underlying transport if
// it supports closing. Safe to call repeatedly.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Connection) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true

	if closer, ok := c.rw.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Debug("closing transport", "connection", c.id, "error", err)
		}
	}
	slog.Debug("connection closed", "connection", c.id, "remote", c.remoteAddr)
}
