package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrPrerequisiteNotMet = errors.New("prerequisite not met")
)

// ValidationError carries per-field messages for a rejected payload.
// It unwraps to ErrBadRequest.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError with the default message.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "validation failed", Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	b, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Sprintf("%s (failed to marshal fields: %v)", e.Message, err)
	}
	return e.Message + ": " + string(b)
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
