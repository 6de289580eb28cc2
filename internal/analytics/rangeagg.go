package analytics

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownWeek is returned when a range bound names a week label that
	// is not on the dataset's week axis.
	ErrUnknownWeek = errors.New("unknown week label")

	// ErrInvalidRange is returned when the start week falls after the end
	// week on the sorted axis.
	ErrInvalidRange = errors.New("start week after end week")
)

// minRangeSubmissionFloor bounds how far the submission threshold can scale
// down for short sub-ranges.
const minRangeSubmissionFloor = 5

// restrictWeeks resolves a selection to the contiguous slice of the week
// axis it covers, inclusive on both ends. An empty bound extends to the
// corresponding end of the axis.
func restrictWeeks(axis []string, sel WeekRange) ([]string, error) {
	if len(axis) == 0 {
		return nil, fmt.Errorf("week axis is empty: %w", ErrUnknownWeek)
	}

	startIdx, endIdx := 0, len(axis)-1
	if sel.Start != "" {
		idx := indexOfWeek(axis, sel.Start)
		if idx < 0 {
			return nil, fmt.Errorf("start week %q: %w", sel.Start, ErrUnknownWeek)
		}
		startIdx = idx
	}
	if sel.End != "" {
		idx := indexOfWeek(axis, sel.End)
		if idx < 0 {
			return nil, fmt.Errorf("end week %q: %w", sel.End, ErrUnknownWeek)
		}
		endIdx = idx
	}
	if startIdx > endIdx {
		return nil, fmt.Errorf("%q to %q: %w", sel.Start, sel.End, ErrInvalidRange)
	}

	return axis[startIdx : endIdx+1], nil
}

func indexOfWeek(axis []string, week string) int {
	for i, w := range axis {
		if w == week {
			return i
		}
	}
	return -1
}

// rangeAccumulator gathers one agent's weekly rows inside the selected
// range: plain sums for the funnel counts, submission-weighted sums for the
// percentage mix, and the distinct weeks seen.
type rangeAccumulator struct {
	firstQuotes  float64
	secondQuotes float64
	submitted    float64
	freeLook     float64

	weightedSmoker    float64
	weightedPreferred float64
	weightedStandard  float64
	weightedGraded    float64
	weightedGI        float64
	weightedCC        float64
	weight            float64

	weeks map[string]struct{}
}

// reaggregate rebuilds per-agent period totals from the weekly rows whose
// label falls inside the selected weeks. Counts sum; every percentage field
// becomes the submission-weighted average over the range, defined as 0 when
// the agent submitted nothing in range. Active weeks are recounted from the
// restricted set.
func reaggregate(weekly []WeeklyActivityRecord, weeks []string) (map[string]RawRow, map[string]int) {
	inRange := make(map[string]struct{}, len(weeks))
	for _, w := range weeks {
		inRange[w] = struct{}{}
	}

	accums := make(map[string]*rangeAccumulator)
	for _, rec := range weekly {
		if _, ok := inRange[rec.Week]; !ok {
			continue
		}
		acc := accums[rec.Agent]
		if acc == nil {
			acc = &rangeAccumulator{weeks: make(map[string]struct{})}
			accums[rec.Agent] = acc
		}

		acc.firstQuotes += rec.FirstQuotes
		acc.secondQuotes += rec.SecondQuotes
		acc.submitted += rec.Submitted
		acc.freeLook += rec.FreeLook

		w := rec.Submitted
		acc.weightedSmoker += rec.SmokerPct * w
		acc.weightedPreferred += rec.PreferredPct * w
		acc.weightedStandard += rec.StandardPct * w
		acc.weightedGraded += rec.GradedPct * w
		acc.weightedGI += rec.GIPct * w
		acc.weightedCC += rec.CCPct * w
		acc.weight += w

		acc.weeks[rec.Week] = struct{}{}
	}

	totals := make(map[string]RawRow, len(accums))
	weeksActive := make(map[string]int, len(accums))
	for agent, acc := range accums {
		row := RawRow{
			Agent:        agent,
			FirstQuotes:  acc.firstQuotes,
			SecondQuotes: acc.secondQuotes,
			Submitted:    acc.submitted,
			FreeLook:     acc.freeLook,
		}
		if acc.weight > 0 {
			row.SmokerPct = acc.weightedSmoker / acc.weight
			row.PreferredPct = acc.weightedPreferred / acc.weight
			row.StandardPct = acc.weightedStandard / acc.weight
			row.GradedPct = acc.weightedGraded / acc.weight
			row.GIPct = acc.weightedGI / acc.weight
			row.CCPct = acc.weightedCC / acc.weight
		}
		totals[agent] = row
		weeksActive[agent] = len(acc.weeks)
	}

	return totals, weeksActive
}

// scaledSubmissionFloor shrinks the submission threshold in proportion to
// the fraction of the full period the sub-range covers. The scaled value is
// floored to whole submissions and never drops below the fixed minimum.
func scaledSubmissionFloor(minSubmissions float64, weeksInRange, totalWeeks int) float64 {
	if totalWeeks <= 0 {
		return minRangeSubmissionFloor
	}
	scaled := math.Floor(minSubmissions * float64(weeksInRange) / float64(totalWeeks))
	if scaled < minRangeSubmissionFloor {
		return minRangeSubmissionFloor
	}
	return scaled
}
