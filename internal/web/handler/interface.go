package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/isl-service/capcore/internal/capability"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, caps *capability.Service) error
}
