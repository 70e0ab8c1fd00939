package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

var (
	ErrProductNotFound   = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock available", ErrConflict)
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
	// Fields maps a JSON field name to what is wrong with it. It may be empty.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, problem := range e.Fields {
		parts = append(parts, field+": "+problem)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
