package daemon

import (
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/batnotify/pkg/events"
)

// ShutdownFunc powers the machine off.
type ShutdownFunc func() error

// ShutdownScheduler runs a ShutdownFunc after a delay. Every Schedule call
// gets its own timer; nothing but Cancel or Stop prevents it from firing.
type ShutdownScheduler struct {
	Action ShutdownFunc

	hub *events.EventHub

	mu      sync.Mutex
	nextID  int
	pending map[int]*pendingShutdown
	stopped bool
}

type pendingShutdown struct {
	timer *time.Timer
	at    time.Time
}

func NewShutdownScheduler(action ShutdownFunc, hub *events.EventHub) *ShutdownScheduler {
	if action == nil {
		panic("shutdown action cannot be nil")
	}

	return &ShutdownScheduler{
		Action:  action,
		hub:     hub,
		pending: make(map[int]*pendingShutdown),
	}
}

// Schedule arranges for Action to run after delay and returns the id and
// due time of the new shutdown.
func (s *ShutdownScheduler) Schedule(delay time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0, time.Time{}, fmt.Errorf("shutdown scheduler is stopped")
	}

	s.nextID++
	id := s.nextID
	at := time.Now().Add(delay).Round(0)
	s.pending[id] = &pendingShutdown{
		at:    at,
		timer: time.AfterFunc(delay, func() { s.fire(id) }),
	}

	logrus.WithFields(logrus.Fields{
		"id":    id,
		"delay": delay,
		"at":    at.Format(time.DateTime),
	}).Warn("shutdown scheduled")

	s.publish(id, events.ShutdownScheduled, at, "")

	return id, at, nil
}

// Cancel stops every pending shutdown and returns how many were stopped.
func (s *ShutdownScheduler) Cancel() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelLocked()
}

// Stop cancels every pending shutdown and rejects further scheduling.
func (s *ShutdownScheduler) Stop() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	return s.cancelLocked()
}

func (s *ShutdownScheduler) cancelLocked() int {
	n := 0
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
		n++

		logrus.WithField("id", id).Info("shutdown cancelled")
		s.publish(id, events.ShutdownCancelled, p.at, "")
	}
	return n
}

// Pending returns the due times of pending shutdowns, earliest first.
func (s *ShutdownScheduler) Pending() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]time.Time, 0, len(s.pending))
	for _, p := range s.pending {
		ret = append(ret, p.at)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Before(ret[j]) })

	return ret
}

func (s *ShutdownScheduler) fire(id int) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	// Cancelled between the timer firing and us taking the lock.
	if !ok {
		return
	}

	logrus.WithField("id", id).Warn("shutting down")

	if err := s.Action(); err != nil {
		logrus.WithField("id", id).Errorf("shutdown failed: %v", err)
		s.publish(id, events.ShutdownFailed, p.at, err.Error())
		return
	}

	s.publish(id, events.ShutdownExecuted, p.at, "")
}

func (s *ShutdownScheduler) publish(id int, action events.ShutdownAction, at time.Time, msg string) {
	s.hub.Publish(events.Shutdown, events.ShutdownEvent{
		ID:      id,
		Action:  action,
		At:      at.Unix(),
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}

// commandShutdown runs the command returned by cmd at fire time, so a
// reloaded config takes effect for shutdowns that are already pending.
func commandShutdown(cmd func() []string) ShutdownFunc {
	return func() error {
		args := cmd()
		if len(args) == 0 {
			return fmt.Errorf("no shutdown command configured")
		}

		out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("%v: %w: %s", args, err, string(out))
		}
		return nil
	}
}
