package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
)

// Analyzer orchestrates the production analytics pipeline: normalization,
// period splitting, qualification, metric derivation, classification, risk
// scoring, and the portfolio summary. An Analyzer is immutable after
// construction and safe for concurrent use.
type Analyzer struct {
	cfg          Config
	qualityScale *OrdinalScale
	riskScale    *OrdinalScale
	logger       *slog.Logger
}

// NewAnalyzer validates the configuration, builds the ordinal scales, and
// returns a ready analyzer.
func NewAnalyzer(cfg Config, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate analytics config: %w", err)
	}

	qualityScale, err := NewOrdinalScale(cfg.QualityTierEdges, cfg.QualityTierLabels)
	if err != nil {
		return nil, fmt.Errorf("build quality tier scale: %w", err)
	}
	riskScale, err := NewOrdinalScale(cfg.RiskProfileEdges, cfg.RiskProfileLabels)
	if err != nil {
		return nil, fmt.Errorf("build risk profile scale: %w", err)
	}

	return &Analyzer{
		cfg:          cfg,
		qualityScale: qualityScale,
		riskScale:    riskScale,
		logger:       logger,
	}, nil
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze runs the full pipeline over a production table, optionally
// restricted to a contiguous week sub-range. Full-period mode qualifies on
// the table's period-total rows; range mode rebuilds totals from the weekly
// rows with submission-weighted percentages and a proportionally scaled
// submission threshold.
//
// Recoverable data defects never fail the pass; they are counted on the
// snapshot. Structural problems (invalid table, unknown week labels, start
// after end) return an error with no partial result.
func (a *Analyzer) Analyze(ctx context.Context, table *domain.ProductionTable, sel WeekRange) (*Snapshot, error) {
	start := time.Now()

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate production table: %w", err)
	}

	rows, defects := a.normalize(ctx, table)
	part := splitPeriods(rows)
	defects.DuplicateTotals = part.DuplicateTotals

	weeks := part.Weeks
	var totals []RawRow
	weeksActive := part.WeeksActive

	if sel.IsZero() {
		totals = a.qualify(part)
	} else {
		restricted, err := restrictWeeks(part.Weeks, sel)
		if err != nil {
			return nil, err
		}
		weeks = restricted

		rangeTotals, rangeWeeks := reaggregate(part.Weekly, restricted)
		floor := scaledSubmissionFloor(a.cfg.MinSubmissions, len(restricted), len(part.Weeks))
		// Quote threshold is a full-period gate; sub-ranges re-qualify on
		// submissions alone and accept a single active week.
		totals = a.qualifyTotals(rangeTotals, rangeWeeks, -1, floor, 1)
		weeksActive = rangeWeeks
	}

	records := make([]AgentPeriodRecord, 0, len(totals))
	for _, total := range totals {
		rec := deriveMetrics(total, weeksActive[total.Agent])
		defects.UnclassifiedValues += a.classify(ctx, &rec)
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Agent < records[j].Agent })

	assessments := a.AssessAll(records)
	summary := a.summarize(records, assessments)

	snapshot := &Snapshot{
		Weeks:       weeks,
		Agents:      records,
		Assessments: assessments,
		Summary:     summary,
		Defects:     defects,
		ComputedAt:  time.Now(),
	}
	if !sel.IsZero() {
		selCopy := sel
		snapshot.Range = &selCopy
	}

	a.logger.InfoContext(ctx, "analysis pass completed",
		"duration", time.Since(start),
		"rows", len(rows),
		"weeks", len(weeks),
		"qualified_agents", len(records),
		"range", !sel.IsZero(),
		"defect_free", defects.Empty(),
	)

	return snapshot, nil
}

// classify attaches both ordinal labels to a record and returns how many of
// its inputs fell outside the configured scales.
func (a *Analyzer) classify(ctx context.Context, rec *AgentPeriodRecord) int {
	outOfRange := 0

	tier, ok := a.qualityScale.Classify(rec.PreferredPct)
	rec.QualityTier = tier
	if !ok {
		outOfRange++
		a.logger.WarnContext(ctx, "preferred percentage outside quality scale",
			"agent", rec.Agent, "preferred_pct", rec.PreferredPct)
	}

	profile, ok := a.riskScale.Classify(rec.GIPct)
	rec.RiskProfile = profile
	if !ok {
		outOfRange++
		a.logger.WarnContext(ctx, "GI percentage outside risk scale",
			"agent", rec.Agent, "gi_pct", rec.GIPct)
	}

	return outOfRange
}
