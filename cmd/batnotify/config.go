package main

import (
	"github.com/spf13/cobra"

	"github.com/charlie0129/batnotify/pkg/config"
)

// NewConfigCommand .
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		GroupID: gAdvanced,
		Short:   "Print the effective configuration",
		Long: `Print the effective configuration as TOML, defaults included.

The config file is read directly, so this works without a running daemon.
The output can be used as a starting point for --config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			return conf.Encode(cmd.OutOrStdout())
		},
	}
}
