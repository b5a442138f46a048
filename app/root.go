// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/config"
	"github.com/isl-service/capcore/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "capcore",
		Short: "capcore resolves fine grained permissions of multi tenant web users",
		Long: `capcore computes the effective permissions of a user from the role matching
its legacy label and its per user allow and deny overrides, caches them and answers
authorization checks over HTTP.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error

			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			return logger.Init(cfg.Log)
		},
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory of main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
