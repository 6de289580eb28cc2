// Package api contains API contract definitions for the agent production
// analytics service. Version v1 represents the current stable API version.
package api

// WeekRangeRequest restricts an analysis to a contiguous sub-range of the
// sorted week axis. Both fields empty means the full period; setting only one
// bound extends the range to the corresponding end of the axis.
type WeekRangeRequest struct {
	StartWeek string `json:"start_week" query:"start_week" validate:"omitempty,max=64"`
	EndWeek   string `json:"end_week" query:"end_week" validate:"omitempty,max=64"`
}

// IsZero reports whether the request selects the full period.
func (r WeekRangeRequest) IsZero() bool {
	return r.StartWeek == "" && r.EndWeek == ""
}

// AgentRiskRequest identifies one agent's risk assessment.
type AgentRiskRequest struct {
	WeekRangeRequest
	Agent string `json:"agent" param:"agent" validate:"required,max=128"`
}

// SummaryRequest asks for the portfolio summary, optionally over a sub-range
// and with a custom top-performer list length.
type SummaryRequest struct {
	WeekRangeRequest
	TopLimit int `json:"top_limit" query:"top_limit" validate:"omitempty,min=1,max=100"`
}
