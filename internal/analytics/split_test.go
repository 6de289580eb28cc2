package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPeriods(t *testing.T) {
	rows := []RawRow{
		{Agent: "Adams", Week: "2025-W01", Submitted: 5},
		{Agent: "Adams", Week: "2025-W02", Submitted: 7},
		{Agent: "Adams", Week: "Total", Submitted: 12},
		{Agent: "Baker", Week: "2025-W02", Submitted: 3},
		{Agent: "Baker", Week: "Total", Submitted: 3},
		// Totals-only agent: no weekly rows at all.
		{Agent: "Carter", Week: "Total", Submitted: 40},
	}

	part := splitPeriods(rows)

	assert.Len(t, part.Weekly, 3)
	assert.Len(t, part.Totals, 3)
	assert.Equal(t, []string{"2025-W01", "2025-W02"}, part.Weeks)

	assert.Equal(t, 2, part.WeeksActive["Adams"])
	assert.Equal(t, 1, part.WeeksActive["Baker"])
	// An agent with only a totals row has zero active weeks.
	assert.Zero(t, part.WeeksActive["Carter"])
	assert.Zero(t, part.DuplicateTotals)
}

func TestSplitPeriodsDistinctWeeks(t *testing.T) {
	// The same week label twice for one agent counts once.
	rows := []RawRow{
		{Agent: "Adams", Week: "2025-W01", Submitted: 2},
		{Agent: "Adams", Week: "2025-W01", Submitted: 3},
		{Agent: "Adams", Week: "2025-W02", Submitted: 1},
	}

	part := splitPeriods(rows)
	assert.Equal(t, 2, part.WeeksActive["Adams"])
	assert.Len(t, part.Weekly, 3)
}

func TestSplitPeriodsDuplicateTotalsLastWins(t *testing.T) {
	rows := []RawRow{
		{Agent: "Adams", Week: "Total", Submitted: 10},
		{Agent: "Adams", Week: "Total", Submitted: 25},
	}

	part := splitPeriods(rows)
	require.Contains(t, part.Totals, "Adams")
	assert.InDelta(t, 25.0, part.Totals["Adams"].Submitted, 1e-9)
	assert.Equal(t, 1, part.DuplicateTotals)
}

func TestSplitPeriodsEmpty(t *testing.T) {
	part := splitPeriods(nil)
	assert.Empty(t, part.Weekly)
	assert.Empty(t, part.Totals)
	assert.Empty(t, part.Weeks)
}
