package app

import (
	"context"
	"encoding/json"
	"io"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/daemon"
)

// withCapabilities runs fn against a capability service on the configured database.
func withCapabilities(ctx context.Context, fn func(ctx context.Context, caps *capability.Service) error) error {
	db, err := daemon.OpenDB(&cfg)
	if err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close() //nolint:errcheck
	}

	client := daemon.NewRedis(&cfg)
	if client != nil {
		defer client.Close() //nolint:errcheck
	}

	caps, err := daemon.NewCapabilities(&cfg, db, client)
	if err != nil {
		return err
	}

	return fn(ctx, caps)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v) //nolint:wrapcheck
}
