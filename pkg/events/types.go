package events

import "encoding/json"

// Event name constants
const (
	Notification = "notification"
	Shutdown     = "shutdown"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// NotificationEvent is published after a notification has been shown.
type NotificationEvent struct {
	Level      string `json:"level"`
	Percentage int    `json:"percentage"`
	PluggedIn  bool   `json:"pluggedIn"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	Closed     bool   `json:"closed,omitempty"`
	Ts         int64  `json:"ts"`
}

// ShutdownAction is what happened to a scheduled shutdown.
type ShutdownAction string

const (
	ShutdownScheduled ShutdownAction = "scheduled"
	ShutdownCancelled ShutdownAction = "cancelled"
	ShutdownExecuted  ShutdownAction = "executed"
	ShutdownFailed    ShutdownAction = "failed"
)

// ShutdownEvent is published whenever a scheduled shutdown changes state.
type ShutdownEvent struct {
	ID      int            `json:"id"`
	Action  ShutdownAction `json:"action"`
	At      int64          `json:"at"`
	Message string         `json:"message,omitempty"`
	Ts      int64          `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.ShutdownEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Action, payload.At)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
