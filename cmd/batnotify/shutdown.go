package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewShutdownCommand .
func NewShutdownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shutdown",
		GroupID: gBasic,
		Short:   "Manage shutdowns scheduled at critical battery",
	}

	cmd.AddCommand(
		newShutdownAbortCommand(),
		newShutdownListCommand(),
	)

	return cmd
}

func newShutdownAbortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Cancel every pending shutdown",
		Long: `Cancel every pending shutdown.

The battery is not re-checked. A new shutdown is scheduled only when the
battery leaves Critical and enters it again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := newClient().AbortShutdown()
			if err != nil {
				return fmt.Errorf("failed to abort shutdown: %w", err)
			}

			if n == 0 {
				cmd.Println("No shutdown was pending.")
				return nil
			}
			cmd.Printf("Cancelled %s.\n", bold("%d shutdown(s)", n))
			return nil
		},
	}
}

func newShutdownListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending shutdowns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pending, err := newClient().GetPendingShutdowns()
			if err != nil {
				return fmt.Errorf("failed to list shutdowns: %w", err)
			}

			if len(pending) == 0 {
				cmd.Println("No shutdown is pending.")
				return nil
			}
			for _, at := range pending {
				cmd.Printf("%s (in %s)\n", at.Format(time.RFC3339), time.Until(at).Round(time.Second))
			}
			return nil
		},
	}
}
