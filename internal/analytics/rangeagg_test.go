package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestrictWeeks(t *testing.T) {
	axis := []string{"W01", "W02", "W03", "W04"}

	tests := []struct {
		name    string
		sel     WeekRange
		want    []string
		wantErr error
	}{
		{"full period", WeekRange{}, axis, nil},
		{"inner range", WeekRange{Start: "W02", End: "W03"}, []string{"W02", "W03"}, nil},
		{"single week", WeekRange{Start: "W03", End: "W03"}, []string{"W03"}, nil},
		{"open start", WeekRange{End: "W02"}, []string{"W01", "W02"}, nil},
		{"open end", WeekRange{Start: "W03"}, []string{"W03", "W04"}, nil},
		{"unknown start", WeekRange{Start: "W99"}, nil, ErrUnknownWeek},
		{"unknown end", WeekRange{End: "W00"}, nil, ErrUnknownWeek},
		{"inverted", WeekRange{Start: "W04", End: "W01"}, nil, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := restrictWeeks(axis, tt.sel)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestrictWeeksEmptyAxis(t *testing.T) {
	_, err := restrictWeeks(nil, WeekRange{})
	assert.ErrorIs(t, err, ErrUnknownWeek)
}

func TestReaggregate(t *testing.T) {
	weekly := []WeeklyActivityRecord{
		{Agent: "Adams", Week: "W01", FirstQuotes: 40, SecondQuotes: 20, Submitted: 10, FreeLook: 1, PreferredPct: 40, GIPct: 10},
		{Agent: "Adams", Week: "W02", FirstQuotes: 60, SecondQuotes: 30, Submitted: 20, FreeLook: 2, PreferredPct: 55, GIPct: 16},
		{Agent: "Adams", Week: "W03", FirstQuotes: 99, SecondQuotes: 99, Submitted: 99, FreeLook: 9, PreferredPct: 99, GIPct: 99}, // outside range
		{Agent: "Baker", Week: "W01", FirstQuotes: 30, SecondQuotes: 10, Submitted: 5, FreeLook: 0, PreferredPct: 20, GIPct: 30},
	}

	totals, weeksActive := reaggregate(weekly, []string{"W01", "W02"})

	require.Contains(t, totals, "Adams")
	adams := totals["Adams"]
	assert.InDelta(t, 100.0, adams.FirstQuotes, 1e-9)
	assert.InDelta(t, 50.0, adams.SecondQuotes, 1e-9)
	assert.InDelta(t, 30.0, adams.Submitted, 1e-9)
	assert.InDelta(t, 3.0, adams.FreeLook, 1e-9)
	// Submission-weighted: (40*10 + 55*20) / 30 = 50, (10*10 + 16*20) / 30 = 14.
	assert.InDelta(t, 50.0, adams.PreferredPct, 1e-9)
	assert.InDelta(t, 14.0, adams.GIPct, 1e-9)
	assert.Equal(t, 2, weeksActive["Adams"])

	assert.Equal(t, 1, weeksActive["Baker"])
}

func TestReaggregateZeroSubmissionsWeighting(t *testing.T) {
	// An agent with no submissions in range gets 0 percentages, not NaN.
	weekly := []WeeklyActivityRecord{
		{Agent: "Quiet", Week: "W01", FirstQuotes: 20, Submitted: 0, PreferredPct: 40, GIPct: 10},
		{Agent: "Quiet", Week: "W02", FirstQuotes: 10, Submitted: 0, PreferredPct: 60, GIPct: 20},
	}

	totals, weeksActive := reaggregate(weekly, []string{"W01", "W02"})

	quiet := totals["Quiet"]
	assert.InDelta(t, 30.0, quiet.FirstQuotes, 1e-9)
	assert.Zero(t, quiet.PreferredPct)
	assert.Zero(t, quiet.GIPct)
	assert.Equal(t, 2, weeksActive["Quiet"])
}

func TestReaggregateExcludesAgentsOutsideRange(t *testing.T) {
	weekly := []WeeklyActivityRecord{
		{Agent: "Late", Week: "W04", Submitted: 50},
	}

	totals, _ := reaggregate(weekly, []string{"W01", "W02"})
	assert.Empty(t, totals)
}

func TestScaledSubmissionFloor(t *testing.T) {
	tests := []struct {
		name           string
		minSubmissions float64
		inRange, total int
		want           float64
	}{
		{"full period keeps threshold", 10, 4, 4, 10},
		{"half period floors at minimum", 10, 2, 4, 5},
		{"single week floors at minimum", 10, 1, 4, 5},
		{"floor division truncates", 10, 3, 4, 7}, // 7.5 -> 7
		{"large threshold scales", 40, 3, 4, 30},
		{"zero total weeks", 10, 0, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scaledSubmissionFloor(tt.minSubmissions, tt.inRange, tt.total)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
