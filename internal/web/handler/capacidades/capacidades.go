// Package capacidades serves the effective permissions of the caller.
package capacidades

import (
	"github.com/gofiber/fiber/v3"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/web/handler"
	"github.com/isl-service/capcore/internal/web/middleware/auth"
)

// Path is the route group of the handler below handler.APIPath.
const Path = "/capacidades"

// Service is the capabilities handler service.
type Service struct {
	handler.Service
	caps *capability.Service
}

// Init registers the routes on router.
func (s *Service) Init(router fiber.Router, caps *capability.Service) error {
	if router == nil || caps == nil {
		return handler.ErrNilDependency
	}

	s.caps = caps

	router.Get(Path, s.Get)

	return nil
}

// Get returns the snapshot of the caller, 404 while fine grained permissions are off.
func (s *Service) Get(c fiber.Ctx) error {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Message: "unauthorized"})
	}

	snapshot, source := s.caps.Snapshot(c.Context(), p)
	if !snapshot.PermissionsEnabled {
		return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Message: capability.MessageUnavailable})
	}

	c.Set("X-Capabilities-Source", string(source))

	return c.JSON(snapshot)
}
