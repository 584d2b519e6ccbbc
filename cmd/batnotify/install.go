package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/batnotify/pkg/config"
	daemonutils "github.com/charlie0129/batnotify/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install batnotify as a systemd user service",
		GroupID: gInstallation,
		Long: `Install the batnotify daemon as a systemd user service.

This makes batnotify start with your graphical session. The unit runs the
current binary with the current --config and --daemon-socket values, so run
"batnotify install" again after moving the binary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Refuse to install a unit that would fail on its first start.
			if _, err := config.NewFile(configPath); err != nil {
				return err
			}

			absConfig, err := filepath.Abs(configPath)
			if err != nil {
				return err
			}
			absSocket := unixSocketPath
			if absSocket != "" {
				absSocket, err = filepath.Abs(absSocket)
				if err != nil {
					return err
				}
			}

			if err := daemonutils.Install(absConfig, absSocket); err != nil {
				return fmt.Errorf("failed to install daemon: %w", err)
			}

			logrus.Infof("installation succeeded")

			unitPath, _ := daemonutils.UnitPath()
			cmd.Printf("Installed %s. Check it with 'systemctl --user status batnotify'.\n", unitPath)

			return nil
		},
	}
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the batnotify systemd user service",
		GroupID: gInstallation,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := daemonutils.Uninstall(); err != nil {
				return fmt.Errorf("failed to uninstall daemon: %w", err)
			}

			logrus.Infof("successfully uninstalled")

			return nil
		},
	}
}
