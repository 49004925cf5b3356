package messaging

import (
	"context"
	"testing"
	"time"
)

// A negative port makes the broker bind a random free one, so the internal
// client must connect to the bound address rather than the configured port.
func TestNatsServerRoundTripOnRandomPort(t *testing.T) {
	s, err := NewNatsServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("building server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	recv := make(chan string, 1)
	var unsub func()
	deadline := time.Now().Add(5 * time.Second)
	for {
		unsub, err = s.Subscribe("test.roundtrip", func(data []byte) {
			recv <- string(data)
		})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("subscribing: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer unsub()

	if err := s.Publish("test.roundtrip", []byte("kote")); err != nil {
		cancel()
		t.Fatalf("publishing: %v", err)
	}
	select {
	case got := <-recv:
		if got != "kote" {
			t.Errorf("received %q, want %q", got, "kote")
		}
	case <-time.After(5 * time.Second):
		t.Error("message never arrived")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("start returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("server did not shut down")
	}
}

func TestNatsServerPublishBeforeStart(t *testing.T) {
	s, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	if err := s.Publish("test.early", []byte("x")); err == nil {
		t.Error("expected error publishing before start")
	}
}
