package daemon

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charlie0129/batnotify/pkg/events"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestShutdownFiresAfterDelay(t *testing.T) {
	var fired int32
	hub := events.NewEventHub()
	ch := hub.Subscribe()

	s := NewShutdownScheduler(func() error {
		atomic.AddInt32(&fired, 1)
		return nil
	}, hub)
	defer s.Stop()

	start := time.Now()
	if _, _, err := s.Schedule(30 * time.Millisecond); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) == 1 })
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("fired after %s, before the delay", elapsed)
	}
	if n := len(s.Pending()); n != 0 {
		t.Errorf("pending after firing = %d", n)
	}

	var actions []events.ShutdownAction
	for len(actions) < 2 {
		select {
		case ev := <-ch:
			p, err := events.DecodeAs[events.ShutdownEvent](ev)
			if err != nil {
				t.Fatal(err)
			}
			actions = append(actions, p.Action)
		case <-time.After(time.Second):
			t.Fatalf("got events %v, want scheduled and executed", actions)
		}
	}
	if actions[0] != events.ShutdownScheduled || actions[1] != events.ShutdownExecuted {
		t.Errorf("events = %v", actions)
	}
}

func TestShutdownCancel(t *testing.T) {
	var fired int32
	s := NewShutdownScheduler(func() error {
		atomic.AddInt32(&fired, 1)
		return nil
	}, nil)
	defer s.Stop()

	for i := 0; i < 3; i++ {
		if _, _, err := s.Schedule(40 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.Cancel(); n != 3 {
		t.Errorf("Cancel() = %d, want 3", n)
	}

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Errorf("fired %d times after cancel", n)
	}

	// Scheduling still works after an abort.
	if _, _, err := s.Schedule(time.Hour); err != nil {
		t.Errorf("Schedule() after Cancel error = %v", err)
	}
}

func TestShutdownStop(t *testing.T) {
	s := NewShutdownScheduler(func() error { return nil }, nil)

	if _, _, err := s.Schedule(time.Hour); err != nil {
		t.Fatal(err)
	}
	if n := s.Stop(); n != 1 {
		t.Errorf("Stop() = %d, want 1", n)
	}
	if _, _, err := s.Schedule(time.Hour); err == nil {
		t.Error("Schedule() after Stop should fail")
	}
}

func TestShutdownPendingSorted(t *testing.T) {
	s := NewShutdownScheduler(func() error { return nil }, nil)
	defer s.Stop()

	_, late, _ := s.Schedule(2 * time.Hour)
	_, early, _ := s.Schedule(time.Hour)

	got := s.Pending()
	if len(got) != 2 || !got[0].Equal(early) || !got[1].Equal(late) {
		t.Errorf("Pending() = %v, want [%v %v]", got, early, late)
	}
}

func TestShutdownFailureIsReported(t *testing.T) {
	hub := events.NewEventHub()
	ch := hub.Subscribe()

	s := NewShutdownScheduler(func() error { return errors.New("not permitted") }, hub)
	defer s.Stop()

	if _, _, err := s.Schedule(time.Millisecond); err != nil {
		t.Fatal(err)
	}

	for {
		select {
		case ev := <-ch:
			p, _ := events.DecodeAs[events.ShutdownEvent](ev)
			if p.Action == events.ShutdownFailed {
				if p.Message != "not permitted" {
					t.Errorf("message = %q", p.Message)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no failure event")
		}
	}
}

func TestCommandShutdown(t *testing.T) {
	if err := commandShutdown(func() []string { return []string{"true"} })(); err != nil {
		t.Errorf("true: %v", err)
	}
	if err := commandShutdown(func() []string { return []string{"false"} })(); err == nil {
		t.Error("false: expected error")
	}
	if err := commandShutdown(func() []string { return nil })(); err == nil {
		t.Error("empty command: expected error")
	}
}
