// Package watch polls a file and reports content changes.
//
// sysfs attributes are generated on read and never raise inotify events, so
// the only way to notice a change is to read the file again.
package watch

import (
	"bytes"
	"context"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Event is sent when the watched file's content differs from the last read.
type Event struct {
	Path    string
	Content []byte
	Time    time.Time
}

// Poller reads Path every Interval.
type Poller struct {
	Path     string
	Interval time.Duration

	events chan Event
	errors chan error
	last   []byte
	seen   bool
}

func NewPoller(path string, interval time.Duration) *Poller {
	return &Poller{
		Path:     path,
		Interval: interval,
		events:   make(chan Event, 1),
		errors:   make(chan error, 1),
	}
}

// Events delivers one event for the first successful read and one for every
// change after that.
func (p *Poller) Events() <-chan Event {
	return p.events
}

// Errors delivers read failures. Polling continues after an error.
func (p *Poller) Errors() <-chan error {
	return p.errors
}

// Run polls until ctx is done, then closes both channels.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.events)
	defer close(p.errors)

	logrus.WithFields(logrus.Fields{
		"path":     p.Path,
		"interval": p.Interval,
	}).Debug("poller started")

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			logrus.Debug("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		select {
		case p.errors <- pkgerrors.Wrapf(err, "failed to poll %s", p.Path):
		case <-ctx.Done():
		}
		return
	}

	if p.seen && bytes.Equal(b, p.last) {
		return
	}

	p.seen = true
	p.last = b

	select {
	case p.events <- Event{Path: p.Path, Content: b, Time: time.Now()}:
	case <-ctx.Done():
	}
}
