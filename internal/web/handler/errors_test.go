package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"

	"github.com/isl-service/capcore/internal/capability"
)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &capability.ValidationError{Reason: "bad"}, want: fiber.StatusUnprocessableEntity},
		{name: "wrapped validation", err: fmt.Errorf("op: %w", &capability.ValidationError{}), want: fiber.StatusUnprocessableEntity},
		{name: "not found", err: &capability.NotFoundError{Kind: "role", ID: "X"}, want: fiber.StatusNotFound},
		{name: "schema unavailable", err: capability.ErrSchemaUnavailable, want: fiber.StatusNotFound},
		{name: "configuration", err: &capability.ConfigurationError{Table: "WRol"}, want: fiber.StatusInternalServerError},
		{name: "store", err: &capability.StoreError{Op: "x", Err: errors.New("down")}, want: fiber.StatusInternalServerError},
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, want: fiber.StatusMethodNotAllowed},
		{name: "anything else", err: errors.New("boom"), want: fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusOf(tc.err))
		})
	}
}

func TestValidate(t *testing.T) {
	type body struct {
		Key string `validate:"required"`
	}

	v := NewValidator()

	assert.Empty(t, v.Validate(&body{Key: "x"}))

	fields := v.Validate(&body{})
	if assert.Len(t, fields, 1) {
		assert.Equal(t, "Key", fields[0].Field)
		assert.Equal(t, "required", fields[0].Tag)
	}
}
