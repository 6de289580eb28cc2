package analytics

import (
	"fmt"
	"time"
)

// Risk severity levels produced by the risk scorer.
const (
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// Default ordinal labels. Bin edges and labels are configuration; these are
// the production defaults.
var (
	DefaultQualityTierLabels = []string{"Poor", "Average", "Good", "Excellent"}
	DefaultRiskProfileLabels = []string{"Low Risk", "Medium Risk", "High Risk"}
)

// RawRow is one normalized observation from the production table: one agent,
// one period label, and the ten numeric fields coerced to float64. The
// underwriting percentages are reported independently per row and are not
// constrained to sum to 100.
type RawRow struct {
	Agent        string  `json:"agent"`
	Week         string  `json:"week"`
	FirstQuotes  float64 `json:"first_quotes"`
	SecondQuotes float64 `json:"second_quotes"`
	Submitted    float64 `json:"submitted"`
	FreeLook     float64 `json:"free_look"`
	SmokerPct    float64 `json:"smoker_pct"`
	PreferredPct float64 `json:"preferred_pct"`
	StandardPct  float64 `json:"standard_pct"`
	GradedPct    float64 `json:"graded_pct"`
	GIPct        float64 `json:"gi_pct"`
	CCPct        float64 `json:"cc_pct"`
}

// WeeklyActivityRecord is a RawRow known to describe a single reporting week
// rather than a period total. It only feeds active-week counting and
// sub-range re-aggregation; the risk scorer never sees one.
type WeeklyActivityRecord RawRow

// AgentPeriodRecord is one row of the qualified period table: an agent's raw
// period totals extended with the derived rates and ordinal classifications.
// Records are immutable once classified.
type AgentPeriodRecord struct {
	Agent string `json:"agent"`

	// Raw period totals
	FirstQuotes  float64 `json:"first_quotes"`
	SecondQuotes float64 `json:"second_quotes"`
	Submitted    float64 `json:"submitted"`
	FreeLook     float64 `json:"free_look"`
	SmokerPct    float64 `json:"smoker_pct"`
	PreferredPct float64 `json:"preferred_pct"`
	StandardPct  float64 `json:"standard_pct"`
	GradedPct    float64 `json:"graded_pct"`
	GIPct        float64 `json:"gi_pct"`
	CCPct        float64 `json:"cc_pct"`

	// Derived metrics
	ConversionRate        float64 `json:"conversion_rate"`
	QuoteProgressionRate  float64 `json:"quote_progression_rate"`
	OverallConversionRate float64 `json:"overall_conversion_rate"`
	FreeLookRate          float64 `json:"free_look_rate"`
	QualityScore          float64 `json:"quality_score"`
	WeeksActive           int     `json:"weeks_active"`
	AvgWeeklySubmissions  float64 `json:"avg_weekly_submissions"`

	// Ordinal classifications
	QualityTier string `json:"quality_tier"`
	RiskProfile string `json:"risk_profile"`
}

// RiskAssessment is the risk scorer's output for one agent: an accumulated
// integer score, the severity level derived from it, and the issue messages
// of every rule that fired, in rule order.
type RiskAssessment struct {
	Agent  string   `json:"agent"`
	Score  int      `json:"score"`
	Level  string   `json:"level"`
	Issues []string `json:"issues"`
}

// WeekRange selects a contiguous, inclusive range of labels on the sorted
// week axis. An empty bound extends the range to the corresponding end of
// the axis; the zero value selects the full period.
type WeekRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsZero reports whether the range selects the full period.
func (r WeekRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// DefectReport counts the recoverable data defects encountered during one
// pipeline pass. Defects never abort processing; they are surfaced here and
// logged so callers can report data quality.
type DefectReport struct {
	UnparseableCells   int      `json:"unparseable_cells"`
	MissingColumns     []string `json:"missing_columns,omitempty"`
	BlankAgentRows     int      `json:"blank_agent_rows"`
	DuplicateTotals    int      `json:"duplicate_totals"`
	UnclassifiedValues int      `json:"unclassified_values"`
}

// Empty reports whether the pass was defect-free.
func (d DefectReport) Empty() bool {
	return d.UnparseableCells == 0 && len(d.MissingColumns) == 0 &&
		d.BlankAgentRows == 0 && d.DuplicateTotals == 0 && d.UnclassifiedValues == 0
}

// PortfolioSummary aggregates the qualified table for dashboard headline
// cards: totals, averages, distribution counts, the top-performer list, and
// the coaching-priority list.
type PortfolioSummary struct {
	AgentCount        int     `json:"agent_count"`
	TotalFirstQuotes  float64 `json:"total_first_quotes"`
	TotalSecondQuotes float64 `json:"total_second_quotes"`
	TotalSubmitted    float64 `json:"total_submitted"`
	TotalFreeLook     float64 `json:"total_free_look"`

	AvgConversionRate float64 `json:"avg_conversion_rate"`
	AvgQualityScore   float64 `json:"avg_quality_score"`
	AvgFreeLookRate   float64 `json:"avg_free_look_rate"`

	TierDistribution map[string]int `json:"tier_distribution"`
	RiskDistribution map[string]int `json:"risk_distribution"`

	TopPerformers      []AgentPeriodRecord `json:"top_performers"`
	CoachingPriorities []RiskAssessment    `json:"coaching_priorities"`
}

// Snapshot is the result of one full pipeline pass over a production table:
// the qualified agent records sorted by agent name, their risk assessments in
// the same order, the portfolio summary, and the week axis the pass covered.
// Snapshots are value objects; the caching layer stores them keyed by input
// content.
type Snapshot struct {
	Range       *WeekRange          `json:"range,omitempty"`
	Weeks       []string            `json:"weeks"`
	Agents      []AgentPeriodRecord `json:"agents"`
	Assessments []RiskAssessment    `json:"assessments"`
	Summary     PortfolioSummary    `json:"summary"`
	Defects     DefectReport        `json:"defects"`
	ComputedAt  time.Time           `json:"computed_at"`
}

// Assessment returns the risk assessment for the named agent, if present.
func (s *Snapshot) Assessment(agent string) (RiskAssessment, bool) {
	for _, a := range s.Assessments {
		if a.Agent == agent {
			return a, true
		}
	}
	return RiskAssessment{}, false
}

// Config holds the thresholds and scales governing qualification,
// classification, and risk severity. All values are adjustable; see
// DefaultConfig for the production defaults.
type Config struct {
	// Qualification thresholds applied to period-total rows.
	MinTotalQuotes float64 `json:"min_total_quotes"`
	MinSubmissions float64 `json:"min_submissions"`
	MinWeeksActive int     `json:"min_weeks_active"`

	// Ordinal scales. Edges are ascending bin boundaries; each scale needs
	// exactly one more edge than labels.
	QualityTierEdges  []float64 `json:"quality_tier_edges"`
	QualityTierLabels []string  `json:"quality_tier_labels"`
	RiskProfileEdges  []float64 `json:"risk_profile_edges"`
	RiskProfileLabels []string  `json:"risk_profile_labels"`

	// Risk severity cutoffs: score >= HighRiskScore is High, score >=
	// MediumRiskScore is Medium, anything below is Low.
	MediumRiskScore int `json:"medium_risk_score"`
	HighRiskScore   int `json:"high_risk_score"`

	// TopPerformerLimit caps the summary's top-performer list.
	TopPerformerLimit int `json:"top_performer_limit"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinTotalQuotes:    50,
		MinSubmissions:    10,
		MinWeeksActive:    2,
		QualityTierEdges:  []float64{0, 20, 30, 40, 100},
		QualityTierLabels: append([]string(nil), DefaultQualityTierLabels...),
		RiskProfileEdges:  []float64{0, 20, 35, 100},
		RiskProfileLabels: append([]string(nil), DefaultRiskProfileLabels...),
		MediumRiskScore:   4,
		HighRiskScore:     6,
		TopPerformerLimit: 10,
	}
}

// Validate checks threshold sanity and scale well-formedness.
func (c Config) Validate() error {
	if c.MinTotalQuotes < 0 {
		return fmt.Errorf("min total quotes must be >= 0, got %.2f", c.MinTotalQuotes)
	}
	if c.MinSubmissions < 0 {
		return fmt.Errorf("min submissions must be >= 0, got %.2f", c.MinSubmissions)
	}
	if c.MinWeeksActive < 0 {
		return fmt.Errorf("min weeks active must be >= 0, got %d", c.MinWeeksActive)
	}
	if c.MediumRiskScore < 0 || c.HighRiskScore < c.MediumRiskScore {
		return fmt.Errorf("risk cutoffs must satisfy 0 <= medium <= high, got medium=%d high=%d",
			c.MediumRiskScore, c.HighRiskScore)
	}
	if c.TopPerformerLimit < 1 {
		return fmt.Errorf("top performer limit must be >= 1, got %d", c.TopPerformerLimit)
	}
	if _, err := NewOrdinalScale(c.QualityTierEdges, c.QualityTierLabels); err != nil {
		return fmt.Errorf("quality tier scale: %w", err)
	}
	if _, err := NewOrdinalScale(c.RiskProfileEdges, c.RiskProfileLabels); err != nil {
		return fmt.Errorf("risk profile scale: %w", err)
	}
	return nil
}
