package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/batnotify/pkg/events"
)

// NewEventsCommand .
func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		GroupID: gAdvanced,
		Short:   "Follow notifications and shutdown events from the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return newClient().SubscribeEvents(ctx, func(ev events.Event) {
				line, err := formatEvent(ev)
				if err != nil {
					logrus.WithField("event", ev.Name).Warnf("failed to decode event: %v", err)
					return
				}
				cmd.Println(line)
			})
		},
	}
}

func formatEvent(ev events.Event) (string, error) {
	switch ev.Name {
	case events.Notification:
		n, err := events.DecodeAs[events.NotificationEvent](ev)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("%s %s %s [%d%%] %s", stamp(n.Ts), bold("notification"), n.Level, n.Percentage, n.Summary)
		if n.Closed {
			line += " (closed, charger unplugged)"
		}
		return line, nil
	case events.Shutdown:
		s, err := events.DecodeAs[events.ShutdownEvent](ev)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("%s %s #%d %s", stamp(s.Ts), bold("shutdown"), s.ID, s.Action)
		if s.Action == events.ShutdownScheduled {
			line += " for " + time.Unix(s.At, 0).Format(time.TimeOnly)
		}
		if s.Message != "" {
			line += ": " + s.Message
		}
		return line, nil
	default:
		return fmt.Sprintf("%s %s", bold("%s", ev.Name), string(ev.Data)), nil
	}
}

func stamp(ts int64) string {
	return time.Unix(ts, 0).Format(time.TimeOnly)
}
