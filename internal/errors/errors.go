package errors

// Package errors defines the typed application errors surfaced by handlers and the admin CLI.

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeConflict    ErrorCode = "conflict"
	ErrCodeValidation  ErrorCode = "validation"
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeCanceled    ErrorCode = "canceled"
	ErrCodeUnavailable ErrorCode = "unavailable"
)

// AppError is a categorized error with an optional cause and offending field.
// It supports errors.Is and errors.As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validationf creates a Validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Wrap wraps err with an AppError, preserving the cause. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func isCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

func IsNotFound(err error) bool    { return isCode(err, ErrCodeNotFound) }
func IsConflict(err error) bool    { return isCode(err, ErrCodeConflict) }
func IsValidation(err error) bool  { return isCode(err, ErrCodeValidation) }
func IsTimeout(err error) bool     { return isCode(err, ErrCodeTimeout) }
func IsCanceled(err error) bool    { return isCode(err, ErrCodeCanceled) }
func IsUnavailable(err error) bool { return isCode(err, ErrCodeUnavailable) }

// GetCode returns the ErrorCode of the outermost AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field of the outermost AppError in err's chain, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
