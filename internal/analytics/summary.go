package analytics

import (
	"sort"
)

// summarize builds the cross-agent portfolio view from the qualified records
// and their assessments. Assessments must be aligned with records by index.
// Output ordering is deterministic: top performers by submitted count
// descending (ties by agent name), coaching priorities by score descending
// (ties by agent name).
func (a *Analyzer) summarize(records []AgentPeriodRecord, assessments []RiskAssessment) PortfolioSummary {
	summary := PortfolioSummary{
		AgentCount:         len(records),
		TierDistribution:   make(map[string]int),
		RiskDistribution:   make(map[string]int),
		TopPerformers:      []AgentPeriodRecord{},
		CoachingPriorities: []RiskAssessment{},
	}

	var sumConversion, sumQuality, sumFreeLook float64
	for _, rec := range records {
		summary.TotalFirstQuotes += rec.FirstQuotes
		summary.TotalSecondQuotes += rec.SecondQuotes
		summary.TotalSubmitted += rec.Submitted
		summary.TotalFreeLook += rec.FreeLook
		sumConversion += rec.ConversionRate
		sumQuality += rec.QualityScore
		sumFreeLook += rec.FreeLookRate
		summary.TierDistribution[rec.QualityTier]++
	}
	if len(records) > 0 {
		n := float64(len(records))
		summary.AvgConversionRate = sumConversion / n
		summary.AvgQualityScore = sumQuality / n
		summary.AvgFreeLookRate = sumFreeLook / n
	}

	for _, assessment := range assessments {
		summary.RiskDistribution[assessment.Level]++
		if assessment.Score >= a.cfg.MediumRiskScore {
			summary.CoachingPriorities = append(summary.CoachingPriorities, assessment)
		}
	}
	sort.Slice(summary.CoachingPriorities, func(i, j int) bool {
		pi, pj := summary.CoachingPriorities[i], summary.CoachingPriorities[j]
		if pi.Score != pj.Score {
			return pi.Score > pj.Score
		}
		return pi.Agent < pj.Agent
	})

	top := append([]AgentPeriodRecord(nil), records...)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Submitted != top[j].Submitted {
			return top[i].Submitted > top[j].Submitted
		}
		return top[i].Agent < top[j].Agent
	})
	if len(top) > a.cfg.TopPerformerLimit {
		top = top[:a.cfg.TopPerformerLimit]
	}
	summary.TopPerformers = top

	return summary
}
