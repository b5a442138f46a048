package capability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isl-service/capcore/internal/db/models"
)

func TestSyncPermissionCatalog(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	svc := newTestService(t, db)

	seedPermissions(t, db, testTenant, "usuarios.ver")

	first, err := svc.SyncPermissionCatalog(ctx, testTenant, nil)
	require.NoError(t, err)
	assert.Equal(t, len(SeedKeys()), first.TotalSeeds)
	assert.Equal(t, len(SeedKeys())-1, first.InsertedCount)
	assert.Equal(t, []string{"usuarios.ver"}, first.SkippedPermissions)

	second, err := svc.SyncPermissionCatalog(ctx, testTenant, nil)
	require.NoError(t, err)
	assert.Zero(t, second.InsertedCount)
	assert.Empty(t, second.InsertedPermissions)
	assert.ElementsMatch(t, SeedKeys(), second.SkippedPermissions)

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Where(map[string]any{"EmpresaId": testTenant}).Count(&count).Error)
	assert.EqualValues(t, len(SeedKeys()), count)

	var seeded models.Permission
	require.NoError(t, db.Where(map[string]any{"Clave": "cheques.ver"}).Take(&seeded).Error)
	require.NotNil(t, seeded.Description)
	assert.Equal(t, "cheques.seed", *seeded.Description)
	assert.Equal(t, "Cheques - Entrar", seeded.Name)
}

func TestSyncPermissionCatalogModules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupMigratedDB(t))

	res, err := svc.SyncPermissionCatalog(ctx, testTenant+1, []string{" Cheques ", "empresas"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalSeeds)
	assert.Equal(t, []string{"empresas.ver", "cheques.ver"}, res.InsertedPermissions)

	_, err = svc.SyncPermissionCatalog(ctx, testTenant, []string{"contabilidad"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestMutatorsWithoutSchema(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	_, err := svc.SyncPermissionCatalog(ctx, testTenant, nil)
	require.ErrorIs(t, err, ErrSchemaUnavailable)

	_, err = svc.CreatePermission(ctx, testTenant, "a.b", "", "")
	require.ErrorIs(t, err, ErrSchemaUnavailable)

	_, _, err = svc.CreateRole(ctx, testTenant, "auditor", "")
	require.ErrorIs(t, err, ErrSchemaUnavailable)

	err = svc.ReplaceRolePermissions(ctx, testTenant, "ADMIN", nil)
	require.ErrorIs(t, err, ErrSchemaUnavailable)

	err = svc.ReplaceUserOverrides(ctx, testTenant, uuid.New(), nil, nil)
	require.ErrorIs(t, err, ErrSchemaUnavailable)
}

func TestCreatePermission(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	svc := newTestService(t, db)

	created, err := svc.CreatePermission(ctx, testTenant, " Reportes.Ver ", "", "  ")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.CreatePermission(ctx, testTenant, "REPORTES.VER", "Otro nombre", "")
	require.NoError(t, err)
	assert.False(t, created, "existing keys are not an error")

	created, err = svc.CreatePermission(ctx, testTenant, "reportes.exportar", "Exportar", "Exporta reportes")
	require.NoError(t, err)
	assert.True(t, created)

	_, err = svc.CreatePermission(ctx, testTenant, "reportes", "", "")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	var rows []models.Permission
	require.NoError(t, db.Order(`"Clave"`).Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, "reportes.exportar", rows[0].Key)
	require.NotNil(t, rows[0].Description)
	assert.Equal(t, "Exporta reportes", *rows[0].Description)

	assert.Equal(t, "reportes.ver", rows[1].Key)
	assert.Equal(t, "reportes.ver", rows[1].Name)
	require.NotNil(t, rows[1].Description)
	assert.Equal(t, "reportes.seed", *rows[1].Description)
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupMigratedDB(t))

	role, created, err := svc.CreateRole(ctx, testTenant, "jefe de caja", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, RoleItem{Code: "JEFE_DE_CAJA", Name: "JEFE_DE_CAJA"}, role)

	role, created, err = svc.CreateRole(ctx, testTenant, "JEFE_DE_CAJA", "Otro")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "JEFE_DE_CAJA", role.Name, "existing roles are returned unchanged")

	_, created, err = svc.CreateRole(ctx, testTenant+1, "jefe de caja", "Jefe")
	require.NoError(t, err)
	assert.True(t, created, "roles are per tenant")

	_, _, err = svc.CreateRole(ctx, testTenant, "  ", "")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestReplaceRolePermissions(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		roleCode string
		keys     []string
		check    func(t *testing.T, err error)
		expected []string
	}{
		{
			name:     "replaces the whole set",
			roleCode: " admin ",
			keys:     []string{"usuarios.crear", "USUARIOS.CREAR", "cheques.ver", ""},
			check:    func(t *testing.T, err error) { require.NoError(t, err) },
			expected: []string{"cheques.ver", "usuarios.crear"},
		},
		{
			name:     "empty set clears the role",
			roleCode: "ADMIN",
			check:    func(t *testing.T, err error) { require.NoError(t, err) },
			expected: []string{},
		},
		{
			name:     "unknown key",
			roleCode: "ADMIN",
			keys:     []string{"usuarios.crear", "nomina.ver"},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{"nomina.ver"}, ve.Keys)
			},
			expected: []string{"usuarios.ver"},
		},
		{
			name:     "unknown role",
			roleCode: "AUDITOR",
			keys:     []string{"usuarios.ver"},
			check: func(t *testing.T, err error) {
				var ne *NotFoundError
				require.ErrorAs(t, err, &ne)
				assert.Equal(t, "role", ne.Kind)
				assert.Equal(t, "AUDITOR", ne.ID)
			},
			expected: []string{"usuarios.ver"},
		},
		{
			name:     "blank role code",
			roleCode: " ",
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
			},
			expected: []string{"usuarios.ver"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupMigratedDB(t)
			svc := newTestService(t, db)

			perms := seedPermissions(t, db, testTenant, "usuarios.ver", "usuarios.crear", "cheques.ver")
			seedLinks(t, db, seedRole(t, db, testTenant, RoleAdmin), perms["usuarios.ver"])

			tc.check(t, svc.ReplaceRolePermissions(ctx, testTenant, tc.roleCode, tc.keys))

			keys, err := svc.store.RoleKeys(ctx, mustSchema(t, svc), testTenant, RoleAdmin)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.expected, keys)
		})
	}
}

func TestReplaceRolePermissionsInvalidatesTenant(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	svc := newTestService(t, db)

	perms := seedPermissions(t, db, testTenant, "usuarios.ver", "usuarios.crear")
	seedLinks(t, db, seedRole(t, db, testTenant, RoleAdmin), perms["usuarios.ver"])

	admin := Principal{UserID: uuid.New(), TenantID: testTenant, LegacyRole: "Admin"}

	snap, _ := svc.Snapshot(ctx, admin)
	require.Equal(t, []string{"usuarios.ver"}, snap.Permissions)

	require.NoError(t, svc.ReplaceRolePermissions(ctx, testTenant, RoleAdmin, []string{"usuarios.crear"}))

	snap, source := svc.Snapshot(ctx, admin)
	assert.Equal(t, SourceBuilt, source)
	assert.Equal(t, []string{"usuarios.crear"}, snap.Permissions)
}

func TestReplaceUserOverrides(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		user      func(models.User) uuid.UUID
		allow     []string
		deny      []string
		check     func(t *testing.T, err error)
		wantKinds []string
	}{
		{
			name:      "allow then deny rows",
			allow:     []string{"cheques.ver", " Cheques.Ver "},
			deny:      []string{"usuarios.ver"},
			check:     func(t *testing.T, err error) { require.NoError(t, err) },
			wantKinds: []string{"deny", "permit"},
		},
		{
			name:      "empty lists clear overrides",
			check:     func(t *testing.T, err error) { require.NoError(t, err) },
			wantKinds: []string{},
		},
		{
			name:  "same key allowed and denied",
			allow: []string{"cheques.ver", "usuarios.ver"},
			deny:  []string{"USUARIOS.VER"},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{"usuarios.ver"}, ve.Keys)
			},
			wantKinds: []string{"deny"},
		},
		{
			name:  "unknown key",
			allow: []string{"nomina.ver"},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, []string{"nomina.ver"}, ve.Keys)
			},
			wantKinds: []string{"deny"},
		},
		{
			name:  "unknown user",
			user:  func(models.User) uuid.UUID { return uuid.New() },
			allow: []string{"cheques.ver"},
			check: func(t *testing.T, err error) {
				var ne *NotFoundError
				require.ErrorAs(t, err, &ne)
				assert.Equal(t, "user", ne.Kind)
			},
			wantKinds: []string{"deny"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupMigratedDB(t)
			svc := newTestService(t, db)

			perms := seedPermissions(t, db, testTenant, "usuarios.ver", "cheques.ver")
			user := seedUser(t, db, testTenant, "ana", "User")
			seedOverride(t, db, user, perms["usuarios.ver"], "deny")

			userID := user.ID
			if tc.user != nil {
				userID = tc.user(user)
			}

			tc.check(t, svc.ReplaceUserOverrides(ctx, testTenant, userID, tc.allow, tc.deny))

			kinds := overrideKinds(t, db, user)
			if len(tc.wantKinds) == 0 {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tc.wantKinds, kinds)
			}
		})
	}
}

func TestReplaceUserOverridesInvalidatesUser(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	svc := newTestService(t, db)

	perms := seedPermissions(t, db, testTenant, "usuarios.ver", "cheques.ver")
	seedLinks(t, db, seedRole(t, db, testTenant, RoleUser), perms["usuarios.ver"])
	user := seedUser(t, db, testTenant, "ana", "User")
	p := Principal{UserID: user.ID, TenantID: testTenant, LegacyRole: "User"}

	snap, _ := svc.Snapshot(ctx, p)
	require.Equal(t, []string{"usuarios.ver"}, snap.Permissions)

	require.NoError(t, svc.ReplaceUserOverrides(ctx, testTenant, user.ID, []string{"cheques.ver"}, []string{"usuarios.ver"}))

	snap, source := svc.Snapshot(ctx, p)
	assert.Equal(t, SourceBuilt, source)
	assert.Equal(t, []string{"cheques.ver"}, snap.Permissions)
}

func TestReplaceUserOverridesCheckConstraint(t *testing.T) {
	ctx := context.Background()
	db := setupAliasDB(t)
	svc := newTestService(t, db)

	_, err := svc.SyncPermissionCatalog(ctx, testTenant, []string{"usuarios"})
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO "UsuarioWeb" ("Id", "EmpresaId", "Usuario", "Rol") VALUES (?, ?, ?, ?)`,
		userID.String(), testTenant, "luis", "User").Error)

	err = svc.ReplaceUserOverrides(ctx, testTenant, userID, []string{"usuarios.ver"}, []string{"usuarios.crear"})
	require.NoError(t, err)

	var kinds []string
	require.NoError(t, db.Raw(`SELECT "Tipo" FROM "WUsuarioPermiso" ORDER BY "Tipo"`).Scan(&kinds).Error)
	assert.Equal(t, []string{"A", "D"}, kinds)

	var reasons []string
	require.NoError(t, db.Raw(`SELECT "Motivo" FROM "WUsuarioPermiso"`).Scan(&reasons).Error)
	assert.Equal(t, []string{defaultOverrideReason, defaultOverrideReason}, reasons)

	snap, _ := svc.Snapshot(ctx, Principal{UserID: userID, TenantID: testTenant, LegacyRole: "User"})
	assert.Equal(t, []string{"usuarios.ver"}, snap.Permissions)
}

func mustSchema(t *testing.T, svc *Service) Schema {
	t.Helper()

	sc, err := svc.store.Schema(context.Background())
	require.NoError(t, err)

	return sc
}
