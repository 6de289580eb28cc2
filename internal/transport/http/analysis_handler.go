package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
	apierrors "github.com/eyecrackcodes/agentsummary/internal/errors"
	"github.com/eyecrackcodes/agentsummary/internal/middleware"
	"github.com/eyecrackcodes/agentsummary/internal/services"
	v1 "github.com/eyecrackcodes/agentsummary/pkg/contracts/api/v1"
)

// AnalysisHandler serves the analysis read endpoints
type AnalysisHandler struct {
	service      *services.AnalysisService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/agents", h.GetAgents)
	r.Get("/agents/{agent}/risk", h.GetAgentRisk)
	r.Get("/risk", h.GetRisk)
	r.Get("/summary", h.GetSummary)
	r.Get("/weeks", h.GetWeeks)
	r.Get("/thresholds", h.GetThresholds)

	return r
}

// GetAgents handles GET /api/v1/agents
func (h *AnalysisHandler) GetAgents(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.weekRange(w, r)
	if !ok {
		return
	}

	agents, err := h.service.Agents(r.Context(), sel)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   agents,
		"count":  len(agents),
	})
}

// GetAgentRisk handles GET /api/v1/agents/{agent}/risk
func (h *AnalysisHandler) GetAgentRisk(w http.ResponseWriter, r *http.Request) {
	req := v1.AgentRiskRequest{Agent: strings.TrimSpace(chi.URLParam(r, "agent"))}
	if req.Agent == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("agent", "Agent name is required"))
		return
	}
	if len(req.Agent) > 128 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("agent", "Agent name is too long"))
		return
	}

	var ok bool
	if req.WeekRangeRequest, ok = h.rangeRequest(w, r); !ok {
		return
	}
	sel := analytics.WeekRange{Start: req.StartWeek, End: req.EndWeek}

	assessment, err := h.service.AgentRisk(r.Context(), req.Agent, sel)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   assessment,
	})
}

// GetRisk handles GET /api/v1/risk
func (h *AnalysisHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.weekRange(w, r)
	if !ok {
		return
	}

	assessments, err := h.service.Risk(r.Context(), sel)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   assessments,
		"count":  len(assessments),
	})
}

// GetSummary handles GET /api/v1/summary
func (h *AnalysisHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req v1.SummaryRequest
	var ok bool
	if req.WeekRangeRequest, ok = h.rangeRequest(w, r); !ok {
		return
	}
	if req.TopLimit, ok = h.params.ValidateInt(w, r, "top_limit", 1, 100, 0); !ok {
		return
	}
	sel := analytics.WeekRange{Start: req.StartWeek, End: req.EndWeek}

	summary, err := h.service.Summary(r.Context(), sel)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.TopLimit > 0 && req.TopLimit < len(summary.TopPerformers) {
		summary.TopPerformers = summary.TopPerformers[:req.TopLimit]
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetWeeks handles GET /api/v1/weeks
func (h *AnalysisHandler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.service.Weeks(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   weeks,
		"count":  len(weeks),
	})
}

// GetThresholds handles GET /api/v1/thresholds
func (h *AnalysisHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Thresholds(),
	})
}

// rangeRequest parses the start_week/end_week query parameters into the
// API contract. Parse failures are written to the response and signalled
// with ok=false.
func (h *AnalysisHandler) rangeRequest(w http.ResponseWriter, r *http.Request) (v1.WeekRangeRequest, bool) {
	req := v1.WeekRangeRequest{
		StartWeek: strings.TrimSpace(r.URL.Query().Get("start_week")),
		EndWeek:   strings.TrimSpace(r.URL.Query().Get("end_week")),
	}

	if len(req.StartWeek) > 64 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("start_week", "start_week is too long"))
		return v1.WeekRangeRequest{}, false
	}
	if len(req.EndWeek) > 64 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("end_week", "end_week is too long"))
		return v1.WeekRangeRequest{}, false
	}

	return req, true
}

func (h *AnalysisHandler) weekRange(w http.ResponseWriter, r *http.Request) (analytics.WeekRange, bool) {
	req, ok := h.rangeRequest(w, r)
	if !ok {
		return analytics.WeekRange{}, false
	}
	return analytics.WeekRange{Start: req.StartWeek, End: req.EndWeek}, true
}

// handleServiceError maps service and pipeline errors onto API errors
func (h *AnalysisHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.WarnContext(r.Context(), "analysis request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("path", r.URL.Path))

	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrNoDataset)
	case errors.Is(err, services.ErrAgentNotFound):
		h.errorHandler.HandleError(w, r, apierrors.AgentNotFoundError(chi.URLParam(r, "agent")))
	case errors.Is(err, analytics.ErrUnknownWeek), errors.Is(err, analytics.ErrInvalidRange):
		h.errorHandler.HandleError(w, r, apierrors.InvalidRangeError(err))
	default:
		h.errorHandler.HandleError(w, r, apierrors.AnalysisFailedError(err))
	}
}
