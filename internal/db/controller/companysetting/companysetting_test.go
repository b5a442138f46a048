package companysetting

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/db/models"
)

const featureKey = "autorizacion.capacidades"

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.CompanySetting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.CompanySetting) {
	t.Helper()
	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestLatest(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seedSettings(t, db, []models.CompanySetting{
		{TenantID: 1, Key: featureKey, Active: false, UpdatedAt: base},
		{TenantID: 1, Key: featureKey, Active: true, UpdatedAt: base.Add(time.Hour)},
		{TenantID: 2, Key: featureKey, Active: false, UpdatedAt: base.Add(2 * time.Hour)},
	})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		tenantID      int
		key           string
		expectedError error
		expectActive  bool
		expectTime    time.Time
	}{
		{
			name:          "nil database",
			tenantID:      1,
			key:           featureKey,
			expectedError: ErrDBNil,
		},
		{
			name:          "empty key",
			dbParam:       db,
			tenantID:      1,
			expectedError: ErrSettingKeyEmpty,
		},
		{
			name:          "unknown tenant",
			dbParam:       db,
			tenantID:      9,
			key:           featureKey,
			expectedError: ErrSettingNotFound,
		},
		{
			name:         "newest row wins",
			dbParam:      db,
			tenantID:     1,
			key:          featureKey,
			expectActive: true,
			expectTime:   base.Add(time.Hour),
		},
		{
			name:       "tenants are isolated",
			dbParam:    db,
			tenantID:   2,
			key:        featureKey,
			expectTime: base.Add(2 * time.Hour),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setting, err := Latest(tc.dbParam, tc.tenantID, tc.key)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectActive, setting.Active)
			assert.True(t, tc.expectTime.Equal(setting.UpdatedAt), "got %s", setting.UpdatedAt)
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	first, err := Set(db, 3, featureKey, false)
	require.NoError(t, err)

	second, err := Set(db, 3, featureKey, true)
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	latest, err := Latest(db, 3, featureKey)
	require.NoError(t, err)
	assert.True(t, latest.Active)

	history, err := History(db, 3, featureKey)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Active)
	assert.False(t, history[1].Active)

	_, err = Set(nil, 3, featureKey, true)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Set(db, 3, "", true)
	require.ErrorIs(t, err, ErrSettingKeyEmpty)
}
