package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	ws "github.com/eyecrackcodes/agentsummary/internal/websocket"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	startTime time.Time

	analysis *AnalysisService
	hub      *ws.Hub
	logger   *slog.Logger
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, analysis *AnalysisService, hub *ws.Hub, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		startTime: time.Now(),
		analysis:  analysis,
		hub:       hub,
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Uptime returns how long the service has been running
func (s *HealthService) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Health returns the current health status. The service is "healthy" once
// it is serving; a missing dataset degrades the analysis sub-status but
// does not fail the check.
func (s *HealthService) Health(ctx context.Context) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	datasetLoaded := s.analysis != nil && s.analysis.HasDataset()
	analysisStatus := "waiting_for_dataset"
	if datasetLoaded {
		analysisStatus = "ready"
	}

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Uptime:    s.Uptime().Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version":  runtime.Version(),
			"goroutines":  runtime.NumGoroutine(),
			"alloc_bytes": memStats.Alloc,
			"num_gc":      memStats.NumGC,
			"os":          runtime.GOOS,
			"arch":        runtime.GOARCH,
			"build_time":  s.buildTime,
		},
		Services: map[string]interface{}{
			"analysis": map[string]interface{}{
				"status":           analysisStatus,
				"dataset_loaded":   datasetLoaded,
				"cached_snapshots": s.cachedSnapshots(),
			},
		},
	}

	if s.hub != nil {
		status.Services["websocket"] = map[string]interface{}{
			"status":  "ready",
			"clients": s.hub.ClientCount(),
		}
	}

	return status
}

func (s *HealthService) cachedSnapshots() int {
	if s.analysis == nil {
		return 0
	}
	return s.analysis.CachedSnapshots()
}
