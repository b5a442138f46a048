package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/isl-service/capcore/internal/capability"
)

func init() { //nolint: gochecknoinits
	checkCmd.Flags().IntVar(&checkTenant, "tenant", 0, "tenant id")
	checkCmd.Flags().StringVar(&checkUser, "user", "", "user uuid")
	checkCmd.Flags().StringVar(&checkRole, "role", capability.LegacyUser, "legacy role label")
	checkCmd.Flags().StringVar(&checkPermission, "permission", "", "permission key")

	for _, name := range []string{"tenant", "user", "permission"} {
		_ = checkCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(checkCmd)
}

var (
	checkTenant     int
	checkUser       string
	checkRole       string
	checkPermission string

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Print the authorization decision and snapshot of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(checkUser)
			if err != nil {
				return err //nolint:wrapcheck
			}

			p := capability.Principal{UserID: userID, TenantID: checkTenant, LegacyRole: checkRole}

			return withCapabilities(cmd.Context(), func(ctx context.Context, caps *capability.Service) error {
				snapshot, _ := caps.Snapshot(ctx, p)

				return printJSON(cmd.OutOrStdout(), map[string]any{
					"decision": caps.Authorize(ctx, p, checkPermission),
					"snapshot": snapshot,
				})
			})
		},
	}
)
