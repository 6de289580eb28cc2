package analytics

import (
	"sort"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
)

// Partition is the period splitter's output: weekly observation rows
// separated from period-total rows, the per-agent active-week counts, and
// the sorted week axis sub-range selection runs against.
type Partition struct {
	// Weekly holds every row whose period label is a real week.
	Weekly []WeeklyActivityRecord

	// Totals maps agent -> that agent's period-total row. When an agent has
	// several total rows the last one wins and the duplicates are counted.
	Totals map[string]RawRow

	// WeeksActive maps agent -> count of distinct week labels among the
	// agent's weekly rows. Agents with only a totals row are absent, which
	// downstream code reads as zero active weeks.
	WeeksActive map[string]int

	// Weeks is the distinct week labels across all agents, ascending.
	Weeks []string

	// DuplicateTotals counts extra period-total rows that were replaced.
	DuplicateTotals int
}

// splitPeriods partitions normalized rows on the reserved total marker.
func splitPeriods(rows []RawRow) Partition {
	part := Partition{
		Totals:      make(map[string]RawRow),
		WeeksActive: make(map[string]int),
	}

	weekSet := make(map[string]struct{})
	agentWeeks := make(map[string]map[string]struct{})

	for _, row := range rows {
		if row.Week == domain.WeekTotalMarker {
			if _, dup := part.Totals[row.Agent]; dup {
				part.DuplicateTotals++
			}
			part.Totals[row.Agent] = row
			continue
		}

		part.Weekly = append(part.Weekly, WeeklyActivityRecord(row))
		weekSet[row.Week] = struct{}{}
		if agentWeeks[row.Agent] == nil {
			agentWeeks[row.Agent] = make(map[string]struct{})
		}
		agentWeeks[row.Agent][row.Week] = struct{}{}
	}

	for agent, weeks := range agentWeeks {
		part.WeeksActive[agent] = len(weeks)
	}

	part.Weeks = make([]string, 0, len(weekSet))
	for week := range weekSet {
		part.Weeks = append(part.Weeks, week)
	}
	sort.Strings(part.Weeks)

	return part
}
