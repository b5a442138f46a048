package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/capability"
)

func init() { //nolint: gochecknoinits
	flagSetCmd.Flags().IntVar(&flagTenant, "tenant", 0, "tenant id")
	flagSetCmd.Flags().BoolVar(&flagEnabled, "enabled", true, "switch fine grained permissions on or off")
	_ = flagSetCmd.MarkFlagRequired("tenant")

	flagShowCmd.Flags().IntVar(&flagTenant, "tenant", 0, "tenant id")
	_ = flagShowCmd.MarkFlagRequired("tenant")

	flagCmd.AddCommand(flagSetCmd, flagShowCmd)
	rootCmd.AddCommand(flagCmd)
}

var (
	flagTenant  int
	flagEnabled bool

	flagCmd = &cobra.Command{
		Use:   "flag",
		Short: "Manage the fine grained permission switch of a tenant",
	}

	flagSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Write a new flag value and drop the cached snapshots of the tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCapabilities(cmd.Context(), func(ctx context.Context, caps *capability.Service) error {
				status, err := caps.SetFeature(ctx, flagTenant, flagEnabled)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), status)
			})
		},
	}

	flagShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the current flag and its history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCapabilities(cmd.Context(), func(ctx context.Context, caps *capability.Service) error {
				current, err := caps.FeatureStatus(ctx, flagTenant)
				if err != nil {
					return err
				}

				history, err := caps.FeatureHistory(ctx, flagTenant)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), map[string]any{"current": current, "history": history})
			})
		},
	}
)
