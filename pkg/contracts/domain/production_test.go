package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() *ProductionTable {
	return &ProductionTable{
		Headers: []string{ColumnAgent, ColumnWeek, ColumnSubmitted},
		Rows: [][]string{
			{"Adams", "W01", "10"},
			{"Adams", WeekTotalMarker},
		},
	}
}

func TestProductionTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProductionTable)
		wantErr string
	}{
		{name: "valid", mutate: func(*ProductionTable) {}},
		{
			name:    "no headers",
			mutate:  func(tbl *ProductionTable) { tbl.Headers = nil },
			wantErr: "no header row",
		},
		{
			name:    "missing agent column",
			mutate:  func(tbl *ProductionTable) { tbl.Headers = []string{ColumnWeek, ColumnSubmitted} },
			wantErr: `required column "Agent" is missing`,
		},
		{
			name:    "no data rows",
			mutate:  func(tbl *ProductionTable) { tbl.Rows = nil },
			wantErr: "no data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := validTable()
			tt.mutate(tbl)

			err := tbl.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProductionTable_ColumnIndexKeepsFirstDuplicate(t *testing.T) {
	tbl := &ProductionTable{Headers: []string{ColumnAgent, " Week ", ColumnAgent}}

	idx := tbl.ColumnIndex()
	assert.Equal(t, 0, idx[ColumnAgent])
	assert.Equal(t, 1, idx[ColumnWeek])
}

func TestProductionTable_CellBounds(t *testing.T) {
	tbl := validTable()

	assert.Equal(t, "10", tbl.Cell(0, 2))
	// Second row is shorter than the header row
	assert.Equal(t, "", tbl.Cell(1, 2))
	assert.Equal(t, "", tbl.Cell(-1, 0))
	assert.Equal(t, "", tbl.Cell(5, 0))
}
