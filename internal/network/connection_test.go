package network

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// fakeTransport feeds scripted bytes to the connection's read pump and
// records everything written to it.
type fakeTransport struct {
	reader *io.PipeReader
	writer *io.PipeWriter

	mu     sync.Mutex
	out    []byte
	closed bool
}

func newFakeTransport() *fakeTransport {
	pr, pw := io.Pipe()
	return &fakeTransport{reader: pr, writer: pw}
}

func (t *fakeTransport) feed(data string) {
	go t.writer.Write([]byte(data))
}

func (t *fakeTransport) dropLink() {
	t.writer.CloseWithError(errors.New("connection reset by peer"))
}

func (t *fakeTransport) Read(p []byte) (int, error) {
	return t.reader.Read(p)
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, errors.New("write on closed transport")
	}
	t.out = append(t.out, p...)
	return len(p), nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.reader.Close()
	return nil
}

func (t *fakeTransport) written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.out)
}

func TestReadLine(t *testing.T) {
	tests := map[string]struct {
		input      string
		echo       bool
		expLine    string
		expEchoHas string
	}{
		"simple line": {
			input:   "hello\r\n",
			expLine: "hello",
		},
		"bare newline terminator": {
			input:   "look\n",
			expLine: "look",
		},
		"bare carriage return terminator": {
			input:   "north\r",
			expLine: "north",
		},
		"surrounding whitespace trimmed": {
			input:   "  say hi  \r\n",
			expLine: "say hi",
		},
		"backspace edits buffer": {
			input:   "helpo\b\blo\r\n",
			expLine: "hello",
		},
		"delete edits buffer": {
			input:   "nortj\x7fh\r\n",
			expLine: "north",
		},
		"backspace on empty buffer is ignored": {
			input:   "\b\bok\r\n",
			expLine: "ok",
		},
		"control bytes dropped": {
			input:   "wh\x01o\r\n",
			expLine: "who",
		},
		"echo emits erase sequence": {
			input:      "ab\b\r\n",
			echo:       true,
			expLine:    "a",
			expEchoHas: "\b \b",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ft := newFakeTransport()
			conn := NewConnection(ft, "127.0.0.1")
			ft.feed(tt.input)

			line, err := conn.ReadLine(tt.echo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "line", line, tt.expLine)

			if tt.expEchoHas != "" && !strings.Contains(ft.written(), tt.expEchoHas) {
				t.Errorf("echo output %q missing %q", ft.written(), tt.expEchoHas)
			}
		})
	}
}

func TestReadLineEchoSuppressed(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")
	ft.feed("secret\r\n")

	line, err := conn.ReadPassword()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "line", line, "secret")

	if strings.Contains(ft.written(), "secret") {
		t.Errorf("password was echoed: %q", ft.written())
	}
}

func TestReadLineInterrupt(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")
	ft.feed("\x03")

	_, err := conn.ReadLine(true)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	testutil.AssertEqual(t, "closed", conn.Closed(), true)
}

func TestReadLineTimeout(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1", WithReadTimeout(25*time.Millisecond))

	_, err := conn.ReadLine(true)
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
	testutil.AssertEqual(t, "closed", conn.Closed(), true)
}

func TestReadLineConnectionLost(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")
	ft.dropLink()

	_, err := conn.ReadLine(true)
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	testutil.AssertEqual(t, "closed", conn.Closed(), true)
}

func TestReadLineOnClosedConnection(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")
	conn.Close()

	_, err := conn.ReadLine(true)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSendNormalizesLineEndings(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")

	conn.Send("one\ntwo\r\nthree\n")
	testutil.AssertEqual(t, "written", ft.written(), "one\r\ntwo\r\nthree\r\n")
}

func TestSendLineAppendsTerminator(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")

	conn.SendLine("goodbye")
	testutil.AssertEqual(t, "written", ft.written(), "goodbye\r\n")
}

func TestSendAfterCloseIsNoop(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")
	conn.Close()

	conn.Send("into the void")
	conn.SendLine("still nothing")
	testutil.AssertEqual(t, "written", ft.written(), "")
}

func TestCloseIsIdempotent(t *testing.T) {
	ft := newFakeTransport()
	conn := NewConnection(ft, "127.0.0.1")

	conn.Close()
	conn.Close()
	conn.Close()
	testutil.AssertEqual(t, "closed", conn.Closed(), true)
}
