package types

import (
	"time"

	"github.com/charlie0129/batnotify/pkg/level"
)

// BatteryStatus is the monitor's view of the battery after the last poll.
type BatteryStatus struct {
	Percentage int         `json:"percentage"`
	Level      level.Level `json:"level"`
	PluggedIn  bool        `json:"pluggedIn"`
	// LastNotified is nil until the first notification has been shown.
	LastNotified *level.Level `json:"lastNotified,omitempty"`
}

// StatusResponse is served by the daemon's /status endpoint.
type StatusResponse struct {
	BatteryStatus
	PendingShutdowns []time.Time `json:"pendingShutdowns"`
}

// AbortResponse is served by DELETE /shutdown.
type AbortResponse struct {
	Cancelled int `json:"cancelled"`
}
