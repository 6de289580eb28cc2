// Package domain contains the shared data contracts for the agent production
// analytics system. These types define the authoritative shape of the raw
// weekly production table exchanged between the dataset loaders, the analytics
// pipeline, and API consumers.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// WeekTotalMarker is the reserved Week value that marks an agent's
// period-total row. Every other Week value denotes a single reporting week.
const WeekTotalMarker = "Total"

// Source column headers as they appear in production workbooks. Header
// matching is exact after surrounding whitespace is trimmed.
const (
	ColumnAgent        = "Agent"
	ColumnWeek         = "Week"
	ColumnFirstQuotes  = "# 1st Quotes"
	ColumnSecondQuotes = "# 2nd Quotes"
	ColumnSubmitted    = "# Submitted"
	ColumnFreeLook     = "# Free look"
	ColumnSmokerPct    = "Smoker %"
	ColumnPreferredPct = "Preferred %"
	ColumnStandardPct  = "Standard %"
	ColumnGradedPct    = "Graded %"
	ColumnGIPct        = "GI %"
	ColumnCCPct        = "CC %"
)

// RequiredColumns returns the columns a table must carry to be loadable at
// all. A table missing one of these is structurally invalid.
func RequiredColumns() []string {
	return []string{ColumnAgent, ColumnWeek}
}

// NumericColumns returns the ten numeric columns in canonical order. Any of
// these may be absent from an input table; absent columns read as zero for
// every row.
func NumericColumns() []string {
	return []string{
		ColumnFirstQuotes,
		ColumnSecondQuotes,
		ColumnSubmitted,
		ColumnFreeLook,
		ColumnSmokerPct,
		ColumnPreferredPct,
		ColumnStandardPct,
		ColumnGradedPct,
		ColumnGIPct,
		ColumnCCPct,
	}
}

// ProductionTable is the raw tabular input produced by the dataset loaders.
// Cells are kept as strings; numeric coercion is the analytics pipeline's
// responsibility so that loading and interpretation stay independently
// testable. Rows may be shorter than the header row (trailing blanks in
// spreadsheets); use Cell for bounds-safe access.
type ProductionTable struct {
	// Headers are the column names from the header row, whitespace-trimmed,
	// in source order.
	Headers []string `json:"headers"`

	// Rows holds the data cells, one slice per source row, aligned to
	// Headers by position.
	Rows [][]string `json:"rows"`

	// Source identifies where the table came from, e.g. a file name or
	// "upload".
	Source string `json:"source,omitempty"`

	// Sheet is the worksheet name for spreadsheet sources, empty for CSV.
	Sheet string `json:"sheet,omitempty"`

	// LoadedAt is when the loader produced this table.
	LoadedAt time.Time `json:"loaded_at"`
}

// ColumnIndex maps each header to its first position in the table. Duplicate
// headers keep the first occurrence, matching spreadsheet reader behavior.
func (t *ProductionTable) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		name := strings.TrimSpace(h)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// Cell returns the cell at (row, col), or the empty string when the row is
// shorter than the header row or the indexes are out of range.
func (t *ProductionTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Validate checks the structural contract: a non-empty header row containing
// every required column, and at least one data row. Numeric columns are not
// required here; the pipeline treats absent ones as all-zero.
func (t *ProductionTable) Validate() error {
	if t == nil {
		return fmt.Errorf("production table is nil")
	}
	if len(t.Headers) == 0 {
		return fmt.Errorf("production table has no header row")
	}
	idx := t.ColumnIndex()
	for _, col := range RequiredColumns() {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("required column %q is missing", col)
		}
	}
	if len(t.Rows) == 0 {
		return fmt.Errorf("production table has no data rows")
	}
	return nil
}

// DatasetInfo describes a loaded dataset for API consumers and refresh
// events. The fingerprint is a content hash of the table; two uploads with
// identical content share a fingerprint.
type DatasetInfo struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source"`
	Sheet       string    `json:"sheet,omitempty"`
	RowCount    int       `json:"row_count"`
	AgentCount  int       `json:"agent_count"`
	WeekCount   int       `json:"week_count"`
	Weeks       []string  `json:"weeks"`
	LoadedAt    time.Time `json:"loaded_at"`
}
