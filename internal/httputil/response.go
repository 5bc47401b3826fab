// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// Severity classifies an error response for client-side presentation.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// ErrorResponse represents a structured error response body.
type ErrorResponse struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON
// response. Credential and token errors surface as 401 with a generic message
// that never echoes internal detail; authorization errors surface as 403;
// everything else is a 500 with the detail kept in the log only.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Title:    "Authentication required",
			Message:  "The provided credential is missing, invalid, expired, or revoked",
			Severity: SeverityError,
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Title:    "Access denied",
			Message:  "You don't have permission to access this resource",
			Severity: SeverityWarning,
		}

	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Title:    "Not found",
			Message:  "The requested resource was not found",
			Severity: SeverityWarning,
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Title:    "Invalid input",
			Message:  err.Error(),
			Severity: SeverityWarning,
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Title:    "Conflict",
			Message:  "A conflict occurred with existing data",
			Severity: SeverityWarning,
		}

	default:
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Title:    "Internal error",
			Message:  "An internal error occurred",
			Severity: SeverityError,
		}
	}

	// Log the full error details (including wrapped errors)
	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("title", errorResponse.Title),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Title:    "Bad request",
		Message:  err.Error(),
		Severity: SeverityWarning,
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Title:    "Validation error",
		Message:  err.Error(),
		Severity: SeverityWarning,
	})
}
