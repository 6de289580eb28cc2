package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Agent,Week,# 1st Quotes,# 2nd Quotes,# Submitted,# Free look,Smoker %,Preferred %,Standard %,Graded %,GI %,CC %
Adams,W01,30,16,10,1,10,50,20,5,10,5
Adams,W02,30,16,10,1,10,50,20,5,10,5
Adams,Total,60,32,20,2,10,50,20,5,10,5
`

// The OpenTelemetry prometheus exporter registers on the process-global
// registry, so the application is built once and shared by the subtests.
func TestApplication(t *testing.T) {
	app, err := NewApplication("")
	require.NoError(t, err)
	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)

	app.Hub.Start()
	t.Cleanup(app.Hub.Stop)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	t.Run("health", func(t *testing.T) {
		rec := get("/api/v1/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("version", func(t *testing.T) {
		rec := get("/api/v1/version")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("agents before dataset", func(t *testing.T) {
		rec := get("/api/v1/agents")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := get("/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown route is a problem document", func(t *testing.T) {
		rec := get("/api/v1/nope/nothing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upload then query", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", "weekly.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(sampleCSV))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = get("/api/v1/agents")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(1), body["count"])

		rec = get("/api/v1/weeks")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request id header", func(t *testing.T) {
		rec := get("/api/v1/health")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("load dataset file missing", func(t *testing.T) {
		err := app.LoadDatasetFile(context.Background(), "does-not-exist.csv")
		assert.Error(t, err)
	})
}
