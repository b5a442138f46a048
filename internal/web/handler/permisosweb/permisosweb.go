// Package permisosweb is the administration API of roles, overrides and the permission catalog.
package permisosweb

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/web/handler"
	"github.com/isl-service/capcore/internal/web/middleware/auth"
)

// Path is the route group of the handler below handler.APIPath.
const Path = "/permisos-web"

// Permission keys guarding the routes.
const (
	PermBootstrap     = "permisosweb.bootstrap"
	PermRolesView     = "permisos_roles.ver_modulo"
	PermCatalogView   = "permisos_modulos.ver_modulo"
	PermRolesEdit     = "permisosweb.roles.editar"
	PermOverridesEdit = "permisosweb.overrides.editar"
	PermCatalogEdit   = "permisosweb.catalogo.editar"
)

// BootstrapAlias serves Bootstrap next to the capabilities route.
const BootstrapAlias = "/capacidades/bootstrap"

// Service is the administration handler service.
type Service struct {
	handler.Service
	caps      *capability.Service
	validator handler.XValidator
}

// Init registers the routes on router.
func (s *Service) Init(router fiber.Router, caps *capability.Service) error {
	if router == nil || caps == nil {
		return handler.ErrNilDependency
	}

	s.caps = caps
	s.validator = handler.NewValidator()

	require := func(key string) fiber.Handler {
		return auth.RequirePermission(caps, key)
	}

	router.Get(BootstrapAlias, require(PermBootstrap), s.Bootstrap)

	r := router.Group(Path)
	r.Get("/bootstrap", require(PermBootstrap), s.Bootstrap)
	r.Get("/roles/bootstrap", require(PermRolesView), s.RolesBootstrap)
	r.Get("/catalogo", require(PermCatalogView), s.Catalog)
	r.Post("/roles", require(PermRolesEdit), s.CreateRole)
	r.Put("/roles/:roleCode/permissions", require(PermRolesEdit), s.ReplaceRolePermissions)
	r.Put("/usuarios/:userId/overrides", require(PermOverridesEdit), s.ReplaceUserOverrides)
	r.Post("/catalogo/sync", require(PermCatalogEdit), s.SyncCatalog)
	r.Post("/catalogo/permissions", require(PermCatalogEdit), s.CreatePermission)

	return nil
}

func tenantOf(c fiber.Ctx) int {
	p, _ := auth.PrincipalFrom(c)
	return p.TenantID
}

// Bootstrap returns the full administration payload of the caller's tenant.
func (s *Service) Bootstrap(c fiber.Ctx) error {
	out, err := s.caps.Bootstrap(c.Context(), tenantOf(c))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(out)
}

// RolesBootstrap returns roles, permissions and their links.
func (s *Service) RolesBootstrap(c fiber.Ctx) error {
	out, err := s.caps.RolesBootstrap(c.Context(), tenantOf(c))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(out)
}

// Catalog returns the permission catalog and its modules.
func (s *Service) Catalog(c fiber.Ctx) error {
	out, err := s.caps.Catalog(c.Context(), tenantOf(c))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(out)
}

// CreateRole adds a role, answering 201 when inserted and 200 when it already existed.
func (s *Service) CreateRole(c fiber.Ctx) error {
	var req CreateRoleRequest
	if ok, err := s.validator.BindJSON(c, &req); !ok {
		return err
	}

	role, created, err := s.caps.CreateRole(c.Context(), tenantOf(c), req.Code, req.Name)
	if err != nil {
		return handler.SendError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(CreateRoleResponse{Code: role.Code, Name: role.Name, Created: created})
}

// ReplaceRolePermissions sets the exact permission set of a role.
func (s *Service) ReplaceRolePermissions(c fiber.Ctx) error {
	roleCode := strings.TrimSpace(c.Params("roleCode"))

	var req RolePermissionsRequest
	if ok, err := s.validator.BindJSON(c, &req); !ok {
		return err
	}

	if req.RoleCode != "" && !strings.EqualFold(strings.TrimSpace(req.RoleCode), roleCode) {
		return handler.SendError(c, &capability.ValidationError{Reason: "role code in body does not match the route"})
	}

	if err := s.caps.ReplaceRolePermissions(c.Context(), tenantOf(c), roleCode, req.Permissions); err != nil {
		return handler.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReplaceUserOverrides sets the exact allow and deny overrides of a user.
func (s *Service) ReplaceUserOverrides(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return handler.SendError(c, &capability.ValidationError{Reason: "user id must be a uuid"})
	}

	var req UserOverridesRequest
	if ok, err := s.validator.BindJSON(c, &req); !ok {
		return err
	}

	if req.UserID != "" {
		bodyID, err := uuid.Parse(req.UserID)
		if err != nil || bodyID != userID {
			return handler.SendError(c, &capability.ValidationError{Reason: "user id in body does not match the route"})
		}
	}

	if err := s.caps.ReplaceUserOverrides(c.Context(), tenantOf(c), userID, req.Allow, req.Deny); err != nil {
		return handler.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SyncCatalog inserts the missing seed permissions, optionally filtered by module.
func (s *Service) SyncCatalog(c fiber.Ctx) error {
	var req SyncCatalogRequest

	if len(c.Body()) > 0 {
		if ok, err := s.validator.BindJSON(c, &req); !ok {
			return err
		}
	}

	out, err := s.caps.SyncPermissionCatalog(c.Context(), tenantOf(c), req.Modules)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(out)
}

// CreatePermission adds one permission to the catalog.
func (s *Service) CreatePermission(c fiber.Ctx) error {
	var req CreatePermissionRequest
	if ok, err := s.validator.BindJSON(c, &req); !ok {
		return err
	}

	created, err := s.caps.CreatePermission(c.Context(), tenantOf(c), req.Key, req.Name, req.Description)
	if err != nil {
		return handler.SendError(c, err)
	}

	key, _ := capability.NormalizePermissionKey(req.Key)

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(CreatePermissionResponse{Key: key, Created: created})
}
