package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isl-service/capcore/internal/capability"
)

func TestMiddleware(t *testing.T) {
	userID := uuid.New()

	testCases := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		want       capability.Principal
	}{
		{
			name:       "valid principal",
			headers:    map[string]string{HeaderUserID: userID.String(), HeaderTenantID: "7", HeaderLegacyRole: "Admin"},
			wantStatus: http.StatusOK,
			want:       capability.Principal{UserID: userID, TenantID: 7, LegacyRole: "Admin"},
		},
		{
			name:       "values are trimmed",
			headers:    map[string]string{HeaderUserID: " " + userID.String(), HeaderTenantID: " 7 ", HeaderLegacyRole: " User "},
			wantStatus: http.StatusOK,
			want:       capability.Principal{UserID: userID, TenantID: 7, LegacyRole: "User"},
		},
		{
			name:       "no headers",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed user id",
			headers:    map[string]string{HeaderUserID: "42", HeaderTenantID: "7", HeaderLegacyRole: "Admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nil user id",
			headers:    map[string]string{HeaderUserID: uuid.Nil.String(), HeaderTenantID: "7", HeaderLegacyRole: "Admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "tenant is not a number",
			headers:    map[string]string{HeaderUserID: userID.String(), HeaderTenantID: "acme", HeaderLegacyRole: "Admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "tenant zero",
			headers:    map[string]string{HeaderUserID: userID.String(), HeaderTenantID: "0", HeaderLegacyRole: "Admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing role",
			headers:    map[string]string{HeaderUserID: userID.String(), HeaderTenantID: "7"},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got capability.Principal

			app := fiber.New()
			app.Use(Middleware)
			app.Get("/", func(c fiber.Ctx) error {
				p, ok := PrincipalFrom(c)
				require.True(t, ok)
				got = p

				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRequirePermissionWithoutPrincipal(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequirePermission(nil, "usuarios.ver"), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
