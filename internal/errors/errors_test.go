package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAPIError(t *testing.T) {
	err := NewWithDetails(http.StatusNotFound, "AGENT_NOT_FOUND", "agent missing", "Adams")

	assert.Equal(t, "agent missing", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Adams", err.Details)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"agent not found", AgentNotFoundError("Baker"), http.StatusNotFound, "AGENT_NOT_FOUND"},
		{"dataset invalid", DatasetInvalidError(fmt.Errorf("missing column")), http.StatusUnprocessableEntity, "DATASET_INVALID"},
		{"invalid range", InvalidRangeError(fmt.Errorf("start after end")), http.StatusBadRequest, "INVALID_RANGE"},
		{"analysis failed", AnalysisFailedError(fmt.Errorf("boom")), http.StatusInternalServerError, "ANALYSIS_FAILED"},
		{"validation", ErrValidation("start_week", "unknown label"), http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeNoDataset, "Conflict", "no dataset", "/api/v1/agents").
		WithExtension("error_code", "NO_DATASET")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, TypeNoDataset, doc["type"])
	assert.InDelta(t, float64(http.StatusConflict), doc["status"].(float64), 1e-9)
	assert.Equal(t, "NO_DATASET", doc["error_code"])
}

func TestHandleErrorRendersProblem(t *testing.T) {
	handler := NewErrorHandler(discardLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, ErrNoDataset)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, TypeNoDataset, doc["type"])
	assert.Equal(t, "NO_DATASET", doc["error_code"])
	assert.Equal(t, "/api/v1/agents", doc["instance"])
}

func TestHandleErrorWrappedAPIError(t *testing.T) {
	handler := NewErrorHandler(discardLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("outer layer: %w", AgentNotFoundError("Carter")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, TypeAgentNotFound, doc["type"])
}

func TestHandleErrorTimeout(t *testing.T) {
	handler := NewErrorHandler(discardLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandleErrorOpaqueErrorIs500(t *testing.T) {
	handler := NewErrorHandler(discardLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("something internal"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details never leak into the response body.
	assert.NotContains(t, rec.Body.String(), "something internal")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(discardLogger(), false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/weeks", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
