package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/isl-service/capcore/internal/capability"
)

// ErrNilDependency is returned by Init when the router or the capability service is nil.
var ErrNilDependency = errors.New(ErrNilRouterFatalLogMsg)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Keys    []string          `json:"keys,omitempty"`
	Fields  []ValidationField `json:"fields,omitempty"`
}

// ValidationField names one request field that failed validation.
type ValidationField struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value,omitempty"`
}

// StatusOf maps a capability error to its HTTP status.
func StatusOf(err error) int {
	var (
		ve *capability.ValidationError
		ne *capability.NotFoundError
		fe *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &ne), errors.Is(err, capability.ErrSchemaUnavailable):
		return fiber.StatusNotFound
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// SendError writes err as an ErrorResponse. Store and configuration
// failures are logged and hidden behind a generic message.
func SendError(c fiber.Ctx, err error) error {
	status := StatusOf(err)
	resp := ErrorResponse{Message: err.Error()}

	var ve *capability.ValidationError
	if errors.As(err, &ve) {
		resp.Message = ve.Reason
		resp.Keys = ve.Keys
	}

	if errors.Is(err, capability.ErrSchemaUnavailable) {
		resp.Message = capability.MessageUnavailable
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		resp.Message = "internal server error"
	}

	return c.Status(status).JSON(resp)
}

// ErrorHandler is the fiber error handler of the app.
func ErrorHandler(c fiber.Ctx, err error) error {
	return SendError(c, err)
}
