package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError             ErrorType = "VALIDATION_ERROR"
	NotFoundError               ErrorType = "NOT_FOUND"
	ServerError                 ErrorType = "SERVER_ERROR"
	GeolocationUnavailableError ErrorType = "GEOLOCATION_UNAVAILABLE"
	PermissionDeniedError       ErrorType = "PERMISSION_DENIED"
	AcquisitionTimeoutError     ErrorType = "ACQUISITION_TIMEOUT"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// GeolocationUnavailable is the single fatal error the acquisition path
// can surface: no geolocation capability exists in this environment at
// all. Every other failure mode degrades to cache or fallback.
func GeolocationUnavailable(detail string) *AppError {
	return &AppError{
		Type:       GeolocationUnavailableError,
		Message:    "Geolocation is not available in this environment",
		Detail:     detail,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// IsGeolocationUnavailable reports whether err is the fatal
// no-capability error.
func IsGeolocationUnavailable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == GeolocationUnavailableError
	}
	return false
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case GeolocationUnavailableError:
		return http.StatusServiceUnavailable
	case PermissionDeniedError:
		return http.StatusForbidden
	case AcquisitionTimeoutError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
