// Package notify delivers desktop notifications.
package notify

import (
	"errors"
	"fmt"
	"time"
)

// AppName is reported to the notification server.
const AppName = "batnotify"

// Backend names accepted by New.
const (
	BackendDBus       = "dbus"
	BackendNotifySend = "notify-send"
)

// ErrCloseUnsupported is returned by backends that cannot withdraw a
// notification once shown.
var ErrCloseUnsupported = errors.New("closing notifications is not supported by this backend")

// Urgency is the freedesktop urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyNormal:
		return "normal"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Notification is a single desktop notification.
type Notification struct {
	Summary string
	Body    string
	Urgency Urgency
	// Timeout is rounded down to milliseconds. Zero means never expire.
	Timeout time.Duration
}

// Notifier shows and closes desktop notifications.
type Notifier interface {
	// Notify shows n and returns the id assigned by the server, or 0 if the
	// backend cannot report one.
	Notify(n Notification) (uint32, error)
	// Close withdraws a notification previously returned by Notify.
	Close(id uint32) error
}

// New returns the Notifier for the named backend.
func New(backend string) (Notifier, error) {
	switch backend {
	case BackendDBus, "":
		return NewDBus()
	case BackendNotifySend:
		return NewNotifySend(), nil
	default:
		return nil, fmt.Errorf("unknown notifier backend %q", backend)
	}
}

func timeoutMillis(d time.Duration) int32 {
	return int32(d / time.Millisecond)
}
