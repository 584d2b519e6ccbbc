// Package level maps a battery percentage to a discrete charge level and
// holds the alert shown for each level.
package level

import (
	"fmt"
	"time"

	"github.com/charlie0129/batnotify/pkg/notify"
)

// Level is a battery charge band. The zero value is Normal.
type Level int

const (
	Normal Level = iota
	High
	Low
	VeryLow
	Critical
)

var names = map[Level]string{
	Normal:   "Normal",
	High:     "High",
	Low:      "Low",
	VeryLow:  "VeryLow",
	Critical: "Critical",
}

func (l Level) String() string {
	if s, ok := names[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) MarshalText() ([]byte, error) {
	s, ok := names[l]
	if !ok {
		return nil, fmt.Errorf("unknown level %d", int(l))
	}
	return []byte(s), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	for k, v := range names {
		if v == string(b) {
			*l = k
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", string(b))
}

// Classify returns the level for a percentage in [0, 100].
func Classify(percentage int) Level {
	switch {
	case percentage <= 14:
		return Critical
	case percentage <= 24:
		return VeryLow
	case percentage <= 40:
		return Low
	case percentage >= 89:
		return High
	default:
		return Normal
	}
}

// Alert is what gets shown to the user when a level is reached.
type Alert struct {
	Summary string
	Body    string
	Urgency notify.Urgency
	Timeout time.Duration
}

// AlertFor returns the alert for l. Normal has no alert. shutdownDelay is
// announced in the Critical body.
func AlertFor(l Level, shutdownDelay time.Duration) (Alert, bool) {
	switch l {
	case High:
		return Alert{
			Summary: "High Battery Charge",
			Body:    "Unplug your computer from power source to prevent the device from overheating",
			Urgency: notify.UrgencyLow,
			Timeout: time.Minute,
		}, true
	case Low:
		return Alert{
			Summary: "Battery Low",
			Body:    "Connect your computer to a power source as soon as possible",
			Urgency: notify.UrgencyNormal,
			Timeout: 2 * time.Minute,
		}, true
	case VeryLow:
		return Alert{
			Summary: "Battery Very Low",
			Body:    "Less than 25% Battery left. Plug your computer in immediately!",
			Urgency: notify.UrgencyCritical,
			Timeout: 10 * time.Minute,
		}, true
	case Critical:
		return Alert{
			Summary: "Battery Critical",
			Body:    fmt.Sprintf("Shutting down in %d seconds. Run \"batnotify shutdown abort\" to cancel.", delaySeconds(shutdownDelay)),
			Urgency: notify.UrgencyCritical,
			Timeout: time.Minute,
		}, true
	default:
		return Alert{}, false
	}
}

// delaySeconds rounds up so a sub-second delay is not announced as 0.
func delaySeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// Notification renders the alert for the given live percentage.
func (a Alert) Notification(percentage int) notify.Notification {
	return notify.Notification{
		Summary: a.Summary,
		Body:    fmt.Sprintf("[%d%%] %s", percentage, a.Body),
		Urgency: a.Urgency,
		Timeout: a.Timeout,
	}
}
