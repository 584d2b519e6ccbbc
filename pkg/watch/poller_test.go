package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func nextEvent(t *testing.T, p *Poller) Event {
	t.Helper()
	select {
	case ev := <-p.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPollerReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacity")
	if err := os.WriteFile(path, []byte("50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(path, 10*time.Millisecond)
	go p.Run(ctx)

	if ev := nextEvent(t, p); string(ev.Content) != "50\n" {
		t.Fatalf("first event content = %q", ev.Content)
	}

	// Unchanged content must not produce events.
	select {
	case ev := <-p.Events():
		t.Fatalf("unexpected event %q", ev.Content)
	case <-time.After(50 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("49\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, p); string(ev.Content) != "49\n" {
		t.Fatalf("second event content = %q", ev.Content)
	}
}

func TestPollerReportsErrorsAndKeepsGoing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacity")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(path, 10*time.Millisecond)
	go p.Run(ctx)

	select {
	case err := <-p.Errors():
		if err == nil {
			t.Fatal("expected non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}

	if err := os.WriteFile(path, []byte("30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Drain errors that raced with the write.
	for {
		select {
		case <-p.Errors():
			continue
		case ev := <-p.Events():
			if string(ev.Content) != "30\n" {
				t.Fatalf("event content = %q", ev.Content)
			}
			return
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event after recovery")
		}
	}
}

func TestPollerClosesChannelsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacity")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(path, 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	nextEvent(t, p)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-p.Events(); ok {
		t.Error("events channel should be closed")
	}
}
