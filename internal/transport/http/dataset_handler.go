package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/eyecrackcodes/agentsummary/internal/dataprocessing"
	apierrors "github.com/eyecrackcodes/agentsummary/internal/errors"
	"github.com/eyecrackcodes/agentsummary/internal/middleware"
	"github.com/eyecrackcodes/agentsummary/internal/services"
)

// DatasetHandler handles dataset upload and inspection
type DatasetHandler struct {
	service        *services.AnalysisService
	loader         *dataprocessing.Loader
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service *services.AnalysisService, loader *dataprocessing.Loader, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		loader:         loader,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.Info)

	return r
}

// Upload handles POST /api/v1/dataset. The request is a multipart form with
// a single "file" field carrying a CSV or XLSX production workbook.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(r.Context(), "multipart parse failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A dataset file is required"))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	h.logger.InfoContext(r.Context(), "dataset upload received",
		slog.String("filename", filename),
		slog.Int64("size", header.Size),
		slog.String("request_id", reqID))

	loaded, err := h.loader.Load(r.Context(), file, filename)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	info, err := h.service.SetDataset(r.Context(), loaded)
	if err != nil {
		h.handleLoadError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// Info handles GET /api/v1/dataset
func (h *DatasetHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoDataset) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoDataset)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

func (h *DatasetHandler) handleLoadError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "dataset load failed",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	switch {
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Only .csv and .xlsx files are supported"))
	case errors.Is(err, dataprocessing.ErrMissingColumn),
		errors.Is(err, dataprocessing.ErrEmptyTable):
		h.errorHandler.HandleError(w, r, apierrors.DatasetInvalidError(err))
	default:
		h.errorHandler.HandleError(w, r, apierrors.DatasetInvalidError(err))
	}
}
