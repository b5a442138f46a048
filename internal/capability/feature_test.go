package capability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlagsStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		migrate  bool
		seed     func(t *testing.T, f *FeatureFlags)
		expected FeatureStatus
	}{
		{
			name:     "no table",
			expected: FeatureStatus{Enabled: true, Version: versionOf(now)},
		},
		{
			name:     "no row",
			migrate:  true,
			expected: FeatureStatus{Enabled: true, Version: versionOf(now)},
		},
		{
			name:    "latest row disabled",
			migrate: true,
			seed: func(t *testing.T, f *FeatureFlags) {
				seedFlag(t, f.db, testTenant, true, updated.Add(-time.Hour))
				seedFlag(t, f.db, testTenant, false, updated)
			},
			expected: FeatureStatus{Enabled: false, Version: "2026-02-01T08:30:00Z"},
		},
		{
			name:    "other tenant row ignored",
			migrate: true,
			seed: func(t *testing.T, f *FeatureFlags) {
				seedFlag(t, f.db, testTenant+1, false, updated)
			},
			expected: FeatureStatus{Enabled: true, Version: versionOf(now)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			if tc.migrate {
				db = setupMigratedDB(t)
			}

			flags := NewFeatureFlags(db, defaultFeatureKey)
			flags.now = func() time.Time { return now }

			if tc.seed != nil {
				tc.seed(t, flags)
			}

			status, err := flags.Status(context.Background(), testTenant)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}
}

func TestFeatureFlagsSet(t *testing.T) {
	flags := NewFeatureFlags(setupMigratedDB(t), defaultFeatureKey)
	ctx := context.Background()

	first, err := flags.Set(ctx, testTenant, false)
	require.NoError(t, err)
	assert.False(t, first.Enabled)

	second, err := flags.Set(ctx, testTenant, true)
	require.NoError(t, err)
	assert.True(t, second.Enabled)
	assert.NotEqual(t, first.Version, second.Version)

	status, err := flags.Status(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, second, status)
}

func TestFeatureFlagsHistory(t *testing.T) {
	ctx := context.Background()

	empty, err := NewFeatureFlags(setupTestDB(t), defaultFeatureKey).History(ctx, testTenant)
	require.NoError(t, err)
	assert.Empty(t, empty)

	db := setupMigratedDB(t)
	first := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	seedFlag(t, db, testTenant, true, first)
	seedFlag(t, db, testTenant, false, first.Add(time.Hour))
	seedFlag(t, db, testTenant+1, false, first)

	history, err := NewFeatureFlags(db, defaultFeatureKey).History(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, []FeatureStatus{
		{Enabled: false, Version: versionOf(first.Add(time.Hour))},
		{Enabled: true, Version: versionOf(first)},
	}, history)
}
