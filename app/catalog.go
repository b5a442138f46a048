package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/capability"
)

func init() { //nolint: gochecknoinits
	catalogSyncCmd.Flags().IntVar(&catalogTenant, "tenant", 0, "tenant id")
	catalogSyncCmd.Flags().StringSliceVar(&catalogModules, "module", nil, "module to sync, repeatable; all when omitted")
	_ = catalogSyncCmd.MarkFlagRequired("tenant")

	catalogCmd.AddCommand(catalogSyncCmd)
	rootCmd.AddCommand(catalogCmd)
}

var (
	catalogTenant  int
	catalogModules []string

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Manage the permission catalog of a tenant",
	}

	catalogSyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Insert the missing built in permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCapabilities(cmd.Context(), func(ctx context.Context, caps *capability.Service) error {
				res, err := caps.SyncPermissionCatalog(ctx, catalogTenant, catalogModules)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
)
