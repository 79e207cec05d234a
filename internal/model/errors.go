package model

import "fmt"

// ValidationError represents a rejected input. Message is the human-readable
// description of the first violated rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DateFormatError represents an invoice or due date that fails strict
// YYYY-MM-DD calendar validation
type DateFormatError struct {
	Field string
	Value string
	Cause error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("Invalid %s format. Use YYYY-MM-DD", e.Field)
}

func (e *DateFormatError) Unwrap() error {
	return e.Cause
}

// NewDateFormatError creates a new date format error
func NewDateFormatError(field, value string, cause error) *DateFormatError {
	return &DateFormatError{
		Field: field,
		Value: value,
		Cause: cause,
	}
}

// RenderError represents a failure in templating, printing or storing an artifact
type RenderError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render failed [%s]: %s (%v)", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("render failed [%s]: %s", e.Format, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new render error
func NewRenderError(format Format, message string, cause error) *RenderError {
	return &RenderError{
		Format:  format,
		Message: message,
		Cause:   cause,
	}
}
