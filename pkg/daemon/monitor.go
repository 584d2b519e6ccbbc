package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/batnotify/pkg/config"
	"github.com/charlie0129/batnotify/pkg/events"
	"github.com/charlie0129/batnotify/pkg/level"
	"github.com/charlie0129/batnotify/pkg/notify"
	"github.com/charlie0129/batnotify/pkg/power"
	"github.com/charlie0129/batnotify/pkg/types"
	"github.com/charlie0129/batnotify/pkg/watch"
)

// Watcher wakes the monitor up. *watch.Poller implements it.
type Watcher interface {
	Run(ctx context.Context)
	Events() <-chan watch.Event
	Errors() <-chan error
}

// Monitor owns the battery status and decides when to notify.
type Monitor struct {
	reader   power.Reader
	notifier notify.Notifier
	shutdown *ShutdownScheduler
	conf     config.Config
	hub      *events.EventHub

	mu     sync.RWMutex
	status types.BatteryStatus

	lastLogged types.BatteryStatus
}

func NewMonitor(
	reader power.Reader,
	notifier notify.Notifier,
	shutdown *ShutdownScheduler,
	conf config.Config,
	hub *events.EventHub,
) *Monitor {
	return &Monitor{
		reader:   reader,
		notifier: notifier,
		shutdown: shutdown,
		conf:     conf,
		hub:      hub,
	}
}

// ShouldNotify reports whether current deserves a notification given the
// level that was notified last (nil if none). Normal never notifies.
func ShouldNotify(last *level.Level, current level.Level) bool {
	if current == level.Normal {
		return false
	}
	return last == nil || *last != current
}

// Status returns a copy of the current status.
func (m *Monitor) Status() types.BatteryStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := m.status
	if st.LastNotified != nil {
		l := *st.LastNotified
		st.LastNotified = &l
	}
	return st
}

// Update reads the battery and reclassifies it.
func (m *Monitor) Update() (types.BatteryStatus, error) {
	percentage, err := m.reader.Percentage()
	if err != nil {
		return types.BatteryStatus{}, pkgerrors.Wrapf(err, "failed to read battery percentage")
	}

	pluggedIn, err := m.reader.PluggedIn()
	if err != nil {
		return types.BatteryStatus{}, pkgerrors.Wrapf(err, "failed to read AC adapter state")
	}

	m.mu.Lock()
	m.status.Percentage = percentage
	m.status.Level = level.Classify(percentage)
	m.status.PluggedIn = pluggedIn
	m.mu.Unlock()

	st := m.Status()
	m.logStatus(st)

	return st, nil
}

// Handle processes one wake-up: read, classify, and notify if due. Errors
// are fatal to the monitor.
func (m *Monitor) Handle() error {
	st, err := m.Update()
	if err != nil {
		return err
	}

	if !ShouldNotify(st.LastNotified, st.Level) {
		return nil
	}

	return m.dispatch(st)
}

func (m *Monitor) dispatch(st types.BatteryStatus) error {
	delay := m.conf.ShutdownDelay()

	alert, ok := level.AlertFor(st.Level, delay)
	if !ok {
		return nil
	}

	n := alert.Notification(st.Percentage)
	id, err := m.notifier.Notify(n)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to show %s notification", st.Level)
	}

	m.mu.Lock()
	l := st.Level
	m.status.LastNotified = &l
	m.mu.Unlock()

	fields := logrus.Fields{
		"level":      st.Level,
		"percentage": st.Percentage,
		"pluggedIn":  st.PluggedIn,
		"id":         id,
	}
	logrus.WithFields(fields).Infof("notified: %s", n.Summary)

	// Unplugging advice is moot on battery.
	closed := false
	if st.Level == level.High && !st.PluggedIn {
		if err := m.notifier.Close(id); err != nil {
			if errors.Is(err, notify.ErrCloseUnsupported) {
				logrus.WithFields(fields).Debug("notifier cannot close notifications")
			} else {
				logrus.WithFields(fields).Warnf("failed to close notification: %v", err)
			}
		} else {
			closed = true
		}
	}

	m.hub.Publish(events.Notification, events.NotificationEvent{
		Level:      st.Level.String(),
		Percentage: st.Percentage,
		PluggedIn:  st.PluggedIn,
		Summary:    n.Summary,
		Body:       n.Body,
		Closed:     closed,
		Ts:         time.Now().Unix(),
	})

	if st.Level == level.Critical {
		if _, _, err := m.shutdown.Schedule(delay); err != nil {
			logrus.WithFields(fields).Errorf("failed to schedule shutdown: %v", err)
		}
	}

	return nil
}

// Run handles wake-ups from w until ctx is done or handling fails. Watcher
// errors are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context, w Watcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go w.Run(ctx)

	logrus.Debugln("monitor loop starts")

	evs, errs := w.Events(), w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			logrus.WithField("path", ev.Path).Trace("battery changed")
			if err := m.Handle(); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logrus.Errorf("watch error: %v", err)
		}
	}
}

func (m *Monitor) logStatus(st types.BatteryStatus) {
	fields := logrus.Fields{
		"percentage": st.Percentage,
		"level":      st.Level,
		"pluggedIn":  st.PluggedIn,
	}
	if st.LastNotified != nil {
		fields["lastNotified"] = *st.LastNotified
	}

	// Only the monitor loop calls this, so lastLogged needs no lock.
	if st.Percentage == m.lastLogged.Percentage && st.Level == m.lastLogged.Level && st.PluggedIn == m.lastLogged.PluggedIn {
		logrus.WithFields(fields).Trace("battery status")
		return
	}

	logrus.WithFields(fields).Debug("battery status")
	m.lastLogged = st
}
