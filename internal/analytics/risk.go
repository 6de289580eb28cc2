package analytics

import (
	"fmt"
)

// Rule cutoffs. These define what the rules mean and are fixed; only the
// severity cutoffs that interpret the accumulated score are configuration.
const (
	lowConversionBelow    = 20.0
	highFreeLookAbove     = 15.0
	elevatedFreeLookAbove = 10.0
	highGIAbove           = 40.0
	lowPreferredBelow     = 20.0
	riskyMixAbove         = 60.0
	lowProductivityBelow  = 5.0
	poorQualityBelow      = 50.0
)

// riskRule is one underwriting risk signal: a predicate over a derived
// record, the score it contributes, and the issue message it explains itself
// with.
type riskRule struct {
	score   int
	applies func(AgentPeriodRecord) bool
	message func(AgentPeriodRecord) string
}

// assessmentRules is the complete rule set, evaluated in order so the issue
// list is deterministic. The two free-look bands are mutually exclusive by
// construction; every other rule may co-fire.
var assessmentRules = []riskRule{
	{
		score:   3,
		applies: func(r AgentPeriodRecord) bool { return r.ConversionRate < lowConversionBelow },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("Low conversion rate (%.1f%%)", r.ConversionRate)
		},
	},
	{
		score:   3,
		applies: func(r AgentPeriodRecord) bool { return r.FreeLookRate > highFreeLookAbove },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("High free look rate (%.1f%%)", r.FreeLookRate)
		},
	},
	{
		score: 1,
		applies: func(r AgentPeriodRecord) bool {
			return r.FreeLookRate > elevatedFreeLookAbove && r.FreeLookRate <= highFreeLookAbove
		},
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("Elevated free look rate (%.1f%%)", r.FreeLookRate)
		},
	},
	{
		score:   2,
		applies: func(r AgentPeriodRecord) bool { return r.GIPct > highGIAbove },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("High GI percentage (%.1f%%)", r.GIPct)
		},
	},
	{
		score:   2,
		applies: func(r AgentPeriodRecord) bool { return r.PreferredPct < lowPreferredBelow },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("Low preferred rate (%.1f%%)", r.PreferredPct)
		},
	},
	{
		score:   2,
		applies: func(r AgentPeriodRecord) bool { return r.GIPct+r.GradedPct > riskyMixAbove },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("High-risk underwriting mix (%.1f%%)", r.GIPct+r.GradedPct)
		},
	},
	{
		score:   1,
		applies: func(r AgentPeriodRecord) bool { return r.AvgWeeklySubmissions < lowProductivityBelow },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("Low weekly productivity (%.1f/week)", r.AvgWeeklySubmissions)
		},
	},
	{
		score:   2,
		applies: func(r AgentPeriodRecord) bool { return r.QualityScore < poorQualityBelow },
		message: func(r AgentPeriodRecord) string {
			return fmt.Sprintf("Poor quality score (%.1f)", r.QualityScore)
		},
	},
}

// Assess scores one agent record against the full rule set. Every rule is
// evaluated; deltas sum into the score and firing rules contribute their
// issue message. Identical input always yields an identical assessment.
func (a *Analyzer) Assess(rec AgentPeriodRecord) RiskAssessment {
	score := 0
	issues := make([]string, 0, 4)

	for _, rule := range assessmentRules {
		if rule.applies(rec) {
			score += rule.score
			issues = append(issues, rule.message(rec))
		}
	}

	return RiskAssessment{
		Agent:  rec.Agent,
		Score:  score,
		Level:  a.severity(score),
		Issues: issues,
	}
}

// AssessAll scores every record, preserving input order.
func (a *Analyzer) AssessAll(records []AgentPeriodRecord) []RiskAssessment {
	assessments := make([]RiskAssessment, len(records))
	for i, rec := range records {
		assessments[i] = a.Assess(rec)
	}
	return assessments
}

// severity maps an accumulated score onto its level using the configured
// cutoffs.
func (a *Analyzer) severity(score int) string {
	switch {
	case score >= a.cfg.HighRiskScore:
		return RiskLevelHigh
	case score >= a.cfg.MediumRiskScore:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}
