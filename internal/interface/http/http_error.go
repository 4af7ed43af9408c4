package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Field   string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps application error codes onto transport statuses.
func fromDomainError(err error) *HTTPError {
	httpErr := &HTTPError{Message: errMessage(err), Field: apperrors.FieldOf(err), Err: err}
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		httpErr.Status, httpErr.Code = http.StatusBadRequest, "invalid_request"
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		httpErr.Status, httpErr.Code = http.StatusNotFound, "not_found"
	case apperrors.IsCode(err, apperrors.CodeUnauthorized):
		httpErr.Status, httpErr.Code = http.StatusUnauthorized, "unauthorized"
	case apperrors.IsCode(err, apperrors.CodeStorage),
		apperrors.IsCode(err, apperrors.CodeCache),
		apperrors.IsCode(err, apperrors.CodeQueue):
		httpErr.Status, httpErr.Code = http.StatusServiceUnavailable, "service_unavailable"
	default:
		httpErr.Status, httpErr.Code = http.StatusInternalServerError, "internal_error"
		httpErr.Message = "something went wrong"
	}
	return httpErr
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
