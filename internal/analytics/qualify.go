package analytics

import (
	"sort"
)

// qualify applies the full-period thresholds to the totals rows: minimum
// first-stage quotes, minimum submitted policies, then minimum active weeks.
// Agents failing any threshold are excluded entirely; there is no partial
// credit. Returns the surviving totals in agent-name order for deterministic
// downstream output.
func (a *Analyzer) qualify(part Partition) []RawRow {
	return a.qualifyTotals(part.Totals, part.WeeksActive,
		a.cfg.MinTotalQuotes, a.cfg.MinSubmissions, a.cfg.MinWeeksActive)
}

// qualifyTotals is the shared gate for full-period and sub-range
// qualification; the two modes differ only in thresholds. A negative
// minQuotes disables the quote threshold (sub-ranges never re-check it).
func (a *Analyzer) qualifyTotals(totals map[string]RawRow, weeksActive map[string]int, minQuotes, minSubmissions float64, minWeeks int) []RawRow {
	agents := make([]string, 0, len(totals))
	for agent := range totals {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	qualified := make([]RawRow, 0, len(agents))
	for _, agent := range agents {
		row := totals[agent]
		if minQuotes >= 0 && row.FirstQuotes < minQuotes {
			continue
		}
		if row.Submitted < minSubmissions {
			continue
		}
		if weeksActive[agent] < minWeeks {
			continue
		}
		qualified = append(qualified, row)
	}
	return qualified
}
