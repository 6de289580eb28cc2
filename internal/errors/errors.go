// Package errors defines the structured API error surface: APIError values
// rendered through chi/render and an ErrorHandler that converts arbitrary
// errors into RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents one failed field validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrInvalidParameter = New(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")

	// 404 Not Found
	ErrNotFound      = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrAgentNotFound = New(http.StatusNotFound, "AGENT_NOT_FOUND", "Agent not in the qualified table")

	// 409 Conflict
	ErrNoDataset = New(http.StatusConflict, "NO_DATASET", "No production dataset is loaded")

	// 422 Unprocessable Entity
	ErrDatasetInvalid = New(http.StatusUnprocessableEntity, "DATASET_INVALID", "Dataset failed structural validation")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer   = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrWebSocketUpgrade = New(http.StatusInternalServerError, "WEBSOCKET_UPGRADE_FAILED", "WebSocket upgrade failed")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error carrying the
// underlying cause.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors wraps multiple field failures into one APIError.
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", errs)
}

// NotFoundError creates a not-found error for a named resource.
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// AgentNotFoundError identifies a missing or unqualified agent.
func AgentNotFoundError(agent string) *APIError {
	return NewWithDetails(http.StatusNotFound, "AGENT_NOT_FOUND",
		fmt.Sprintf("agent %q is not in the qualified table", agent), agent)
}

// DatasetInvalidError wraps a structural load failure.
func DatasetInvalidError(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "DATASET_INVALID",
		"Dataset failed structural validation", err.Error())
}

// InvalidRangeError wraps an invalid week-range selection.
func InvalidRangeError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_RANGE",
		"Invalid week range selection", err.Error())
}

// AnalysisFailedError wraps a pipeline failure.
func AnalysisFailedError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "ANALYSIS_FAILED",
		"Analysis pipeline failed", err.Error())
}
