package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator, reporting JSON field names.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct checks s against its validate tags. A missing required field
// yields requiredMsg; any other rule violation yields a generic message. Both
// carry the per-field details.
func validateStruct(s any, requiredMsg string) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Message: "Invalid input", Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(validationErrors))
	missing := false
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			missing = true
		}
		fields[fieldPath(e)] = describe(e)
	}

	msg := "Validation failed"
	if missing {
		msg = requiredMsg
	}
	return &ValidationError{Message: msg, Fields: fields}
}

// fieldPath drops the top-level struct name: "CreateOrderRequest.sender.id" becomes "sender.id".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}
