package capability

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/db/controller/companysetting"
)

// FeatureStatus tells whether fine grained permissions are on for a tenant.
// Version changes whenever the flag row changes and is surfaced to clients.
type FeatureStatus struct {
	Enabled bool   `json:"enabled"`
	Version string `json:"version"`
}

// FeatureFlags reads and writes the per tenant feature flag.
// Reads fail open: a missing table or row means enabled.
type FeatureFlags struct {
	db  *gorm.DB
	key string
	now func() time.Time
}

// NewFeatureFlags returns flags stored under key.
func NewFeatureFlags(db *gorm.DB, key string) *FeatureFlags {
	return &FeatureFlags{
		db:  db,
		key: key,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (f *FeatureFlags) enabledNow() FeatureStatus {
	return FeatureStatus{Enabled: true, Version: versionOf(f.now())}
}

// Status returns the flag of tenantID.
func (f *FeatureFlags) Status(ctx context.Context, tenantID int) (FeatureStatus, error) {
	db := f.db.WithContext(ctx)

	if !db.Migrator().HasTable(TableCompanySetting) {
		return f.enabledNow(), nil
	}

	row, err := companysetting.Latest(db, tenantID, f.key)
	switch {
	case errors.Is(err, companysetting.ErrSettingNotFound):
		return f.enabledNow(), nil
	case err != nil:
		return FeatureStatus{}, &StoreError{Op: "feature flag", Err: err}
	}

	return FeatureStatus{Enabled: row.Active, Version: versionOf(row.UpdatedAt)}, nil
}

// Set stores a new flag row for tenantID.
func (f *FeatureFlags) Set(ctx context.Context, tenantID int, enabled bool) (FeatureStatus, error) {
	row, err := companysetting.Set(f.db.WithContext(ctx), tenantID, f.key, enabled)
	if err != nil {
		return FeatureStatus{}, &StoreError{Op: "set feature flag", Err: err}
	}

	return FeatureStatus{Enabled: row.Active, Version: versionOf(row.UpdatedAt)}, nil
}

// History returns every flag row of tenantID, latest first.
func (f *FeatureFlags) History(ctx context.Context, tenantID int) ([]FeatureStatus, error) {
	db := f.db.WithContext(ctx)

	if !db.Migrator().HasTable(TableCompanySetting) {
		return []FeatureStatus{}, nil
	}

	rows, err := companysetting.History(db, tenantID, f.key)
	if err != nil {
		return nil, &StoreError{Op: "feature flag history", Err: err}
	}

	out := make([]FeatureStatus, len(rows))
	for i, row := range rows {
		out[i] = FeatureStatus{Enabled: row.Active, Version: versionOf(row.UpdatedAt)}
	}

	return out, nil
}

func versionOf(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
