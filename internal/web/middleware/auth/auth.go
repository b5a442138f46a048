package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/web/handler"
)

// Headers set by the authentication gateway.
const (
	HeaderUserID     = "X-User-Id"
	HeaderTenantID   = "X-Tenant-Id"
	HeaderLegacyRole = "X-Legacy-Role"
)

type principalKey struct{}

// Middleware reads the principal headers and stores the principal in the locals.
// Requests without a valid principal are answered with 401.
func Middleware(c fiber.Ctx) error {
	p, ok := parsePrincipal(c)
	if !ok {
		log.Debug().Str("path", c.Path()).Msg("request without a valid principal")

		return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Message: "unauthorized"})
	}

	c.Locals(principalKey{}, p)

	return c.Next()
}

func parsePrincipal(c fiber.Ctx) (capability.Principal, bool) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Get(HeaderUserID)))
	if err != nil || userID == uuid.Nil {
		return capability.Principal{}, false
	}

	tenantID, err := strconv.Atoi(strings.TrimSpace(c.Get(HeaderTenantID)))
	if err != nil || tenantID <= 0 {
		return capability.Principal{}, false
	}

	role := strings.TrimSpace(c.Get(HeaderLegacyRole))
	if role == "" {
		return capability.Principal{}, false
	}

	return capability.Principal{UserID: userID, TenantID: tenantID, LegacyRole: role}, true
}

// PrincipalFrom returns the principal stored by Middleware.
func PrincipalFrom(c fiber.Ctx) (capability.Principal, bool) {
	p, ok := c.Locals(principalKey{}).(capability.Principal)
	return p, ok
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(caps *capability.Service, permission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Message: "unauthorized"})
		}

		d := caps.Authorize(c.Context(), p, permission)
		if !d.Allowed {
			log.Warn().
				Str("user_id", p.UserID.String()).
				Int("tenant", p.TenantID).
				Str("permission", permission).
				Str("reason", d.Reason).
				Msg("principal lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(handler.ErrorResponse{Message: "forbidden: " + permission})
		}

		return c.Next()
	}
}
