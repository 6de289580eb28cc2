package analytics

// Quality-score blend weights over the Preferred and Standard underwriting
// percentages. The divisor keeps a 100/100 mix at a score of 100.
const (
	qualityPreferredWeight = 1.5
	qualityStandardWeight  = 1.0
	qualityDivisor         = 2.5
)

// safeRate returns num/den expressed as a percentage, defined as 0 whenever
// the denominator is not positive. Derived rates are never NaN or infinite.
func safeRate(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

// deriveMetrics extends one qualifying totals row with the derived rates.
// Pure function of the row plus the precomputed active-week count; no
// cross-agent normalization happens here. Classification labels are attached
// separately by the tier classifier.
func deriveMetrics(total RawRow, weeksActive int) AgentPeriodRecord {
	rec := AgentPeriodRecord{
		Agent:        total.Agent,
		FirstQuotes:  total.FirstQuotes,
		SecondQuotes: total.SecondQuotes,
		Submitted:    total.Submitted,
		FreeLook:     total.FreeLook,
		SmokerPct:    total.SmokerPct,
		PreferredPct: total.PreferredPct,
		StandardPct:  total.StandardPct,
		GradedPct:    total.GradedPct,
		GIPct:        total.GIPct,
		CCPct:        total.CCPct,
		WeeksActive:  weeksActive,
	}

	rec.ConversionRate = safeRate(total.Submitted, total.SecondQuotes)
	rec.QuoteProgressionRate = safeRate(total.SecondQuotes, total.FirstQuotes)
	rec.OverallConversionRate = safeRate(total.Submitted, total.FirstQuotes)
	rec.FreeLookRate = safeRate(total.FreeLook, total.Submitted)
	rec.QualityScore = (total.PreferredPct*qualityPreferredWeight +
		total.StandardPct*qualityStandardWeight) / qualityDivisor
	if weeksActive > 0 {
		rec.AvgWeeklySubmissions = total.Submitted / float64(weeksActive)
	}

	return rec
}
