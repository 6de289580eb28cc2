package analytics

import (
	"context"
	"strconv"
	"strings"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
)

// normalize coerces a validated production table into typed rows. Every cell
// of the ten numeric columns becomes a float64; cells that fail to parse
// count as defects and read as 0. Numeric columns absent from the table are
// flagged once and read as 0 for every row. Rows whose agent is blank after
// trimming belong to nobody and are skipped (counted, never fatal).
func (a *Analyzer) normalize(ctx context.Context, table *domain.ProductionTable) ([]RawRow, DefectReport) {
	var defects DefectReport

	columnMap := table.ColumnIndex()
	for _, col := range domain.NumericColumns() {
		if _, ok := columnMap[col]; !ok {
			defects.MissingColumns = append(defects.MissingColumns, col)
		}
	}
	if len(defects.MissingColumns) > 0 {
		a.logger.WarnContext(ctx, "numeric columns missing from production table, reading as zero",
			"columns", defects.MissingColumns,
			"source", table.Source,
		)
	}

	agentIdx := columnMap[domain.ColumnAgent]
	weekIdx := columnMap[domain.ColumnWeek]

	rows := make([]RawRow, 0, len(table.Rows))
	for i := range table.Rows {
		// Bound row access through the table so short rows read as blanks.
		parseNumeric := func(colName string) float64 {
			idx, ok := columnMap[colName]
			if !ok {
				return 0
			}
			cell := strings.TrimSpace(table.Cell(i, idx))
			if cell == "" {
				return 0
			}
			val, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				defects.UnparseableCells++
				return 0
			}
			return val
		}

		agent := strings.TrimSpace(table.Cell(i, agentIdx))
		if agent == "" {
			defects.BlankAgentRows++
			continue
		}

		rows = append(rows, RawRow{
			Agent:        agent,
			Week:         strings.TrimSpace(table.Cell(i, weekIdx)),
			FirstQuotes:  parseNumeric(domain.ColumnFirstQuotes),
			SecondQuotes: parseNumeric(domain.ColumnSecondQuotes),
			Submitted:    parseNumeric(domain.ColumnSubmitted),
			FreeLook:     parseNumeric(domain.ColumnFreeLook),
			SmokerPct:    parseNumeric(domain.ColumnSmokerPct),
			PreferredPct: parseNumeric(domain.ColumnPreferredPct),
			StandardPct:  parseNumeric(domain.ColumnStandardPct),
			GradedPct:    parseNumeric(domain.ColumnGradedPct),
			GIPct:        parseNumeric(domain.ColumnGIPct),
			CCPct:        parseNumeric(domain.ColumnCCPct),
		})
	}

	if defects.UnparseableCells > 0 || defects.BlankAgentRows > 0 {
		a.logger.WarnContext(ctx, "recoverable defects during normalization",
			"unparseable_cells", defects.UnparseableCells,
			"blank_agent_rows", defects.BlankAgentRows,
			"rows_kept", len(rows),
		)
	}

	return rows, defects
}
