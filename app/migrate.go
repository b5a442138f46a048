package app

import (
	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the canonical capability tables",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		return daemon.Migrate(db)
	},
}
