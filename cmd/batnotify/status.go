package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/batnotify/pkg/level"
	"github.com/charlie0129/batnotify/pkg/types"
)

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func levelText(l level.Level) string {
	switch l {
	case level.Critical:
		return color.New(color.Bold, color.FgRed).Sprint(l)
	case level.VeryLow:
		return color.New(color.Bold, color.FgYellow).Sprint(l)
	case level.Low:
		return color.New(color.FgYellow).Sprint(l)
	case level.High:
		return color.New(color.FgCyan).Sprint(l)
	default:
		return color.New(color.FgGreen).Sprint(l)
	}
}

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of batnotify",
		Long:    `Get the battery level, charger state, last notification and pending shutdowns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()

			status, err := c.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			if asJSON {
				b, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			printStatus(cmd, status)

			batteries, err := c.GetBatteryInfo()
			if err != nil {
				// Not every machine exposes more than the capacity file.
				logrus.Debugf("skipping battery info: %v", err)
				return nil
			}

			for _, b := range batteries {
				cmd.Println()
				cmd.Println(bold("Battery %d:", b.Index))
				cmd.Printf("  State: %s\n", bold("%s", b.State))
				if b.Full > 0 {
					cmd.Printf("  Capacity: %s\n", bold("%.0f / %.0f mWh", b.Current, b.Full))
				}
				if b.ChargeRate != 0 {
					cmd.Printf("  Charge rate: %s\n", bold("%.1f W", b.ChargeRate/1e3))
				}
				if b.Design > 0 {
					cmd.Printf("  Health: %s\n", bold("%.1f%%", b.Health()))
				}
				if b.Voltage > 0 {
					cmd.Printf("  Voltage: %s\n", bold("%.2f V", b.Voltage))
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}

func printStatus(cmd *cobra.Command, status *types.StatusResponse) {
	cmd.Println(bold("Battery:"))
	cmd.Printf("  Charge: %s\n", bold("%d%%", status.Percentage))
	cmd.Printf("  Level: %s\n", levelText(status.Level))
	cmd.Printf("  Plugged in: %s\n", bool2Text(status.PluggedIn))

	cmd.Println()
	cmd.Println(bold("Notifications:"))
	if status.LastNotified == nil {
		cmd.Println("  Last notified: none yet")
	} else {
		cmd.Printf("  Last notified: %s\n", levelText(*status.LastNotified))
	}

	cmd.Println()
	cmd.Println(bold("Pending shutdowns:"))
	if len(status.PendingShutdowns) == 0 {
		cmd.Println("  None")
		return
	}
	for _, at := range status.PendingShutdowns {
		cmd.Printf("  %s (in %s)\n", bold("%s", at.Format(time.TimeOnly)), time.Until(at).Round(time.Second))
	}
	cmd.Println("  Run 'batnotify shutdown abort' to cancel.")
}
