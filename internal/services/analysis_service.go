package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
	"github.com/eyecrackcodes/agentsummary/internal/infrastructure"
	ws "github.com/eyecrackcodes/agentsummary/internal/websocket"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts/events"
)

var (
	// ErrNoDataset is returned by accessors before any dataset is loaded
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrAgentNotFound is returned when an agent is absent from the
	// qualified records of the selected period
	ErrAgentNotFound = errors.New("agent not found")
)

// AnalysisService owns the currently loaded production table and serves
// analysis snapshots over it. Snapshots are cached by dataset fingerprint
// and week range; loading a new dataset purges the cache and notifies
// connected dashboards.
type AnalysisService struct {
	analyzer *analytics.Analyzer
	hub      *ws.Hub
	logger   *slog.Logger
	metrics  *infrastructure.PipelineMetrics

	// configHash folds the pipeline thresholds into cache keys so a
	// reconfigured service never serves stale classifications.
	configHash string

	mu    sync.RWMutex
	table *domain.ProductionTable
	info  *domain.DatasetInfo

	cacheMu sync.RWMutex
	cache   map[string]*analytics.Snapshot
	group   singleflight.Group
}

// NewAnalysisService creates the analysis service
func NewAnalysisService(analyzer *analytics.Analyzer, hub *ws.Hub, logger *slog.Logger) (*AnalysisService, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfgJSON, err := json.Marshal(analyzer.Config())
	if err != nil {
		return nil, fmt.Errorf("hash pipeline config: %w", err)
	}
	sum := blake2b.Sum256(cfgJSON)

	return &AnalysisService{
		analyzer:   analyzer,
		hub:        hub,
		logger:     logger.With(slog.String("component", "analysis_service")),
		configHash: hex.EncodeToString(sum[:8]),
		cache:      make(map[string]*analytics.Snapshot),
	}, nil
}

// SetMetrics wires the pipeline instruments into the service
func (s *AnalysisService) SetMetrics(m *infrastructure.PipelineMetrics) {
	s.metrics = m
}

// SetDataset installs a new production table as the current dataset. The
// snapshot cache is purged and a dataset:refreshed event is broadcast.
func (s *AnalysisService) SetDataset(ctx context.Context, table *domain.ProductionTable) (*domain.DatasetInfo, error) {
	if table == nil {
		return nil, fmt.Errorf("production table is required")
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate production table: %w", err)
	}

	// Run a full-period pass up front so a structurally broken dataset is
	// rejected instead of replacing a working one.
	snapshot, err := s.analyzer.Analyze(ctx, table, analytics.WeekRange{})
	if err != nil {
		return nil, fmt.Errorf("analyze dataset: %w", err)
	}

	fingerprint := fingerprintTable(table)
	info := &domain.DatasetInfo{
		ID:          uuid.New().String(),
		Fingerprint: fingerprint,
		Source:      table.Source,
		Sheet:       table.Sheet,
		RowCount:    len(table.Rows),
		AgentCount:  len(snapshot.Agents),
		WeekCount:   len(snapshot.Weeks),
		Weeks:       append([]string(nil), snapshot.Weeks...),
		LoadedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.table = table
	s.info = info
	s.mu.Unlock()

	s.cacheMu.Lock()
	s.cache = make(map[string]*analytics.Snapshot)
	s.cache[s.cacheKey(fingerprint, analytics.WeekRange{})] = snapshot
	s.cacheMu.Unlock()

	if s.metrics != nil {
		s.metrics.DatasetsLoaded.Add(ctx, 1)
		s.recordPipelinePass(ctx, len(table.Rows), snapshot.Defects)
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset_id", info.ID),
		slog.String("fingerprint", fingerprint),
		slog.String("source", info.Source),
		slog.Int("rows", info.RowCount),
		slog.Int("agents", info.AgentCount),
		slog.Int("weeks", info.WeekCount))

	if s.hub != nil {
		s.hub.BroadcastDatasetRefreshed(events.DatasetRefreshed{
			DatasetID:   info.ID,
			Fingerprint: info.Fingerprint,
			Source:      info.Source,
			RowCount:    info.RowCount,
			AgentCount:  info.AgentCount,
			WeekCount:   info.WeekCount,
			LoadedAt:    info.LoadedAt,
		}, infrastructure.GetTraceID(ctx))
	}

	return info, nil
}

// Dataset returns metadata for the currently loaded dataset
func (s *AnalysisService) Dataset(ctx context.Context) (*domain.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil, ErrNoDataset
	}
	info := *s.info
	return &info, nil
}

// HasDataset reports whether a dataset is currently loaded
func (s *AnalysisService) HasDataset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info != nil
}

// Agents returns the qualified agent records for the selected period
func (s *AnalysisService) Agents(ctx context.Context, sel analytics.WeekRange) ([]analytics.AgentPeriodRecord, error) {
	snapshot, err := s.Snapshot(ctx, sel)
	if err != nil {
		return nil, err
	}
	return snapshot.Agents, nil
}

// AgentRisk returns the risk assessment for one agent in the selected period
func (s *AnalysisService) AgentRisk(ctx context.Context, agent string, sel analytics.WeekRange) (*analytics.RiskAssessment, error) {
	snapshot, err := s.Snapshot(ctx, sel)
	if err != nil {
		return nil, err
	}
	assessment, ok := snapshot.Assessment(agent)
	if !ok {
		return nil, fmt.Errorf("agent %q: %w", agent, ErrAgentNotFound)
	}
	return &assessment, nil
}

// Risk returns all risk assessments for the selected period
func (s *AnalysisService) Risk(ctx context.Context, sel analytics.WeekRange) ([]analytics.RiskAssessment, error) {
	snapshot, err := s.Snapshot(ctx, sel)
	if err != nil {
		return nil, err
	}
	return snapshot.Assessments, nil
}

// Summary returns the portfolio summary for the selected period
func (s *AnalysisService) Summary(ctx context.Context, sel analytics.WeekRange) (*analytics.PortfolioSummary, error) {
	snapshot, err := s.Snapshot(ctx, sel)
	if err != nil {
		return nil, err
	}
	summary := snapshot.Summary
	return &summary, nil
}

// Weeks returns the sorted week axis of the current dataset
func (s *AnalysisService) Weeks(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil, ErrNoDataset
	}
	return append([]string(nil), s.info.Weeks...), nil
}

// Thresholds returns the active pipeline configuration
func (s *AnalysisService) Thresholds() analytics.Config {
	return s.analyzer.Config()
}

// Snapshot returns the analysis snapshot for the selected period, computing
// it at most once per dataset and range. Concurrent requests for the same
// key share one pipeline pass.
func (s *AnalysisService) Snapshot(ctx context.Context, sel analytics.WeekRange) (*analytics.Snapshot, error) {
	s.mu.RLock()
	table := s.table
	fingerprint := ""
	if s.info != nil {
		fingerprint = s.info.Fingerprint
	}
	s.mu.RUnlock()

	if table == nil {
		return nil, ErrNoDataset
	}

	key := s.cacheKey(fingerprint, sel)

	s.cacheMu.RLock()
	cached, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Add(ctx, 1)
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Add(ctx, 1)
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		snapshot, err := s.analyzer.Analyze(ctx, table, sel)
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.SnapshotsComputed.Add(ctx, 1)
			s.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())
			s.recordPipelinePass(ctx, len(table.Rows), snapshot.Defects)
		}

		s.cacheMu.Lock()
		// The dataset may have changed while we were computing; only cache
		// results that still describe the current fingerprint.
		s.mu.RLock()
		current := s.info != nil && s.info.Fingerprint == fingerprint
		s.mu.RUnlock()
		if current {
			s.cache[key] = snapshot
		}
		s.cacheMu.Unlock()

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*analytics.Snapshot), nil
}

// CachedSnapshots reports the number of cached snapshots, for health checks
func (s *AnalysisService) CachedSnapshots() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache)
}

func (s *AnalysisService) cacheKey(fingerprint string, sel analytics.WeekRange) string {
	return fingerprint + "|" + s.configHash + "|" + sel.Start + "|" + sel.End
}

// recordPipelinePass counts the rows a pipeline pass consumed and its
// recoverable defects by category. Callers check s.metrics for nil.
func (s *AnalysisService) recordPipelinePass(ctx context.Context, rows int, defects analytics.DefectReport) {
	s.metrics.RowsNormalized.Add(ctx, int64(rows))

	record := func(category string, count int) {
		if count > 0 {
			s.metrics.DataDefects.Add(ctx, int64(count),
				metric.WithAttributes(attribute.String("category", category)))
		}
	}
	record("unparseable_cell", defects.UnparseableCells)
	record("missing_column", len(defects.MissingColumns))
	record("blank_agent_row", defects.BlankAgentRows)
	record("duplicate_total", defects.DuplicateTotals)
	record("unclassified_value", defects.UnclassifiedValues)
}

// fingerprintTable hashes the table content. Two uploads with identical
// cells share a fingerprint regardless of file name.
func fingerprintTable(table *domain.ProductionTable) string {
	h, _ := blake2b.New256(nil)
	for _, header := range table.Headers {
		h.Write([]byte(header))
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0x1e})
	for _, row := range table.Rows {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
