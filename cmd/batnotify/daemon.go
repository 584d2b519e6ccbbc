package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/batnotify/pkg/daemon"
	"github.com/charlie0129/batnotify/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run the battery monitor in the foreground",
		GroupID: gBasic,
		Long: `Run the battery monitor in the foreground.

The daemon exits with an error if the battery files cannot be read or a
notification cannot be shown. Pass --daemon-socket "" to run without the
status socket. Send SIGHUP to reload the shutdown delay and command.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("batnotify daemon starting")
			return daemon.Run(configPath, unixSocketPath)
		},
	}

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)

			if daemonVersion, err := newClient().GetVersion(); err == nil {
				if daemonVersion != version.Version {
					logrus.WithFields(logrus.Fields{
						"clientVersion": version.Version,
						"daemonVersion": daemonVersion,
					}).Warn("version mismatch between client and daemon")
				}
			}
		},
	}
}
