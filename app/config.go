package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/config"
)

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&configJSON, "json", false, "print JSON instead of TOML")

	rootCmd.AddCommand(configCmd)
}

var (
	configJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, secrets omitted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dump := config.DumpConfig
			if configJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(&cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err //nolint:wrapcheck
		},
	}
)
