// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/wiring-animator/backend/internal/catalog"
	"github.com/wiring-animator/backend/internal/session"
	"github.com/wiring-animator/backend/internal/store"
	"github.com/wiring-animator/backend/internal/timeline"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// mapDomainError translates domain errors into API errors so handlers can
// return store/session/catalog errors directly.
func mapDomainError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrAlbumNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "ALBUM_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, store.ErrAlbumLocked):
		return &APIError{Status: http.StatusConflict, Code: "ALBUM_LOCKED", Message: err.Error()}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "SESSION_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, session.ErrTooManySessions):
		return &APIError{Status: http.StatusServiceUnavailable, Code: "TOO_MANY_SESSIONS", Message: err.Error()}
	case errors.Is(err, catalog.ErrTypeExists):
		return &APIError{Status: http.StatusConflict, Code: "TYPE_EXISTS", Message: err.Error()}
	case errors.Is(err, catalog.ErrTypeNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "TYPE_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, timeline.ErrInitialSlide):
		return &APIError{Status: http.StatusBadRequest, Code: "INITIAL_SLIDE", Message: err.Error()}
	case errors.Is(err, os.ErrNotExist):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	default:
		return NewInternalError("An unexpected error occurred", err)
	}
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = mapDomainError(err)
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
