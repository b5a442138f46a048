package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// XValidator validates request bodies with struct tags.
type XValidator struct {
	validator *validator.Validate
}

// NewValidator returns an XValidator.
func NewValidator() XValidator {
	return XValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate performs validation on data and returns the failed fields.
func (v XValidator) Validate(data any) []ValidationField {
	var fields []ValidationField

	err := v.validator.Struct(data)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []ValidationField{{Field: "body", Tag: "invalid"}}
	}

	for _, fe := range errs {
		fields = append(fields, ValidationField{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}

	return fields
}

// BindJSON decodes the body into out and validates it.
// It writes the 422 response itself and returns false when the body is rejected.
func (v XValidator) BindJSON(c fiber.Ctx, out any) (bool, error) {
	if err := c.Bind().JSON(out); err != nil {
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Message: "invalid request body"})
	}

	if fields := v.Validate(out); len(fields) > 0 {
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: "validation failed",
			Fields:  fields,
		})
	}

	return true, nil
}
