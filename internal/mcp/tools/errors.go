package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/internal/validate"
)

// Error codes for MCP tool responses.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidSchema = "INVALID_SCHEMA"
	ErrCodeCanceled      = "CANCELED"
	ErrCodeInternal      = "INTERNAL"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapRunError converts an error that aborted a batch into a coded error.
func WrapRunError(err error) error {
	if err == nil {
		return nil
	}

	var (
		coded      *CodedError
		parseErr   *schema.SchemaParseError
		compileErr *validate.SchemaCompileError
	)
	switch {
	case errors.As(err, &parseErr):
		coded = &CodedError{Code: ErrCodeInvalidSchema, Message: "schema is not valid JSON", Cause: err}
	case errors.As(err, &compileErr):
		coded = &CodedError{Code: ErrCodeInvalidSchema, Message: "schema cannot be compiled", Cause: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		coded = &CodedError{Code: ErrCodeCanceled, Message: "validation was interrupted", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeInternal, Message: "validation failed", Cause: err}
	}

	slog.Warn("validation run aborted",
		slog.String("code", coded.Code),
		slog.String("error", err.Error()),
	)

	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
