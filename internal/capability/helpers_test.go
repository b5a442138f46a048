package capability

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/isl-service/capcore/internal/db/models"
)

const testTenant = 1

// setupTestDB creates an empty in-memory SQLite database.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// setupMigratedDB creates a database with the canonical capability tables.
func setupMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	svc, err := New(Config{DB: db, Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)

	return svc
}

func seedRole(t *testing.T, db *gorm.DB, tenantID int, code string) models.Role {
	t.Helper()

	role := models.Role{TenantID: tenantID, Code: code, Name: code}
	require.NoError(t, db.Create(&role).Error)

	return role
}

func seedPermissions(t *testing.T, db *gorm.DB, tenantID int, keys ...string) map[string]models.Permission {
	t.Helper()

	out := make(map[string]models.Permission, len(keys))
	for _, key := range keys {
		p := models.Permission{TenantID: tenantID, Key: key, Name: key}
		require.NoError(t, db.Create(&p).Error)
		out[key] = p
	}

	return out
}

func seedLinks(t *testing.T, db *gorm.DB, role models.Role, perms ...models.Permission) {
	t.Helper()

	for _, p := range perms {
		link := models.RolePermission{TenantID: role.TenantID, RoleID: role.ID, PermissionID: p.ID}
		require.NoError(t, db.Create(&link).Error)
	}
}

func seedUser(t *testing.T, db *gorm.DB, tenantID int, username, legacyRole string) models.User {
	t.Helper()

	user := models.User{ID: uuid.New(), TenantID: tenantID, Username: username, LegacyRole: legacyRole}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func seedOverride(t *testing.T, db *gorm.DB, user models.User, p models.Permission, kind string) {
	t.Helper()

	row := models.UserPermission{
		TenantID:     user.TenantID,
		UserID:       user.ID.String(),
		PermissionID: p.ID,
		Kind:         kind,
		Reason:       "test",
	}
	require.NoError(t, db.Create(&row).Error)
}

func seedFlag(t *testing.T, db *gorm.DB, tenantID int, active bool, at time.Time) {
	t.Helper()

	row := models.CompanySetting{TenantID: tenantID, Key: defaultFeatureKey, Active: active, UpdatedAt: at}
	require.NoError(t, db.Create(&row).Error)
}

func overrideKinds(t *testing.T, db *gorm.DB, user models.User) []string {
	t.Helper()

	var kinds []string
	require.NoError(t, db.Model(&models.UserPermission{}).
		Where(map[string]any{"EmpresaId": user.TenantID, "UsuarioWebId": user.ID.String()}).
		Order(`"Tipo"`).
		Pluck("Tipo", &kinds).Error)

	return kinds
}

// staticBuilder returns res on every call.
func staticBuilder(res BuildResult) SnapshotBuilder {
	return BuilderFunc(func(context.Context, uuid.UUID, int, string) BuildResult { return res })
}

func enabledSnapshot(userID uuid.UUID, tenantID int, keys ...string) Snapshot {
	return Snapshot{
		UserID:             userID,
		TenantID:           tenantID,
		PermissionsEnabled: true,
		Permissions:        keys,
		Version:            "v1",
	}
}
