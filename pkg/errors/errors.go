package errors

import "errors"

// Error codes shared by the domain and transport layers.
const (
	CodeInvalidInput = "invalid_input"
	CodeCatalog      = "catalog_error"
	CodeStorage      = "storage_error"
	CodeCache        = "cache_error"
	CodeQueue        = "queue_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	// Field names the offending input (e.g. "semester" or "performance.AI") when known.
	Field string
	Err   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// WrapField is Wrap with the offending field attached.
func WrapField(code, field, message string, err error) error {
	return &AppError{Code: code, Field: field, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FieldOf returns the field recorded on the first AppError in the chain.
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
