package capability

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaUnavailable is returned when a capability table does not exist.
// The tenant has not been migrated yet; callers degrade to the legacy policy.
var ErrSchemaUnavailable = errors.New("capability tables are not available")

// ConfigurationError reports a capability table whose identity columns match none of the known aliases.
type ConfigurationError struct {
	Table      string
	Candidates []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("table %s has none of the expected columns %s", e.Table, strings.Join(e.Candidates, ", "))
}

// ValidationError rejects a mutation before anything is written.
type ValidationError struct {
	Reason string
	Keys   []string
}

func (e *ValidationError) Error() string {
	if len(e.Keys) == 0 {
		return e.Reason
	}

	return e.Reason + ": " + strings.Join(e.Keys, ", ")
}

// NotFoundError reports a role or user referenced by a mutation that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// StoreError wraps a failed store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("capability store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		se *StoreError
		ce *ConfigurationError
		ve *ValidationError
		ne *NotFoundError
	)
	if errors.Is(err, ErrSchemaUnavailable) || errors.As(err, &se) || errors.As(err, &ce) ||
		errors.As(err, &ve) || errors.As(err, &ne) {
		return err
	}

	return &StoreError{Op: op, Err: err}
}
