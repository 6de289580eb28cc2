package dataprocessing

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
)

const sampleCSV = `Agent,Week,# 1st Quotes,# 2nd Quotes,# Submitted,# Free look,Smoker %,Preferred %,Standard %,Graded %,GI %,CC %
Adams,W01,25,13,8,1,10,50,20,5,10,5
Adams,Total,100,52,32,4,10,50,20,5,10,5
Baker,W01,30,15,6,1,5,15,30,20,45,0
`

func TestLoadCSV(t *testing.T) {
	loader := NewLoader(nil)

	table, err := loader.LoadCSV(context.Background(), strings.NewReader(sampleCSV), "weekly.csv")
	require.NoError(t, err)

	assert.Equal(t, "weekly.csv", table.Source)
	assert.Empty(t, table.Sheet)
	assert.Len(t, table.Headers, 12)
	assert.Len(t, table.Rows, 3)
	assert.False(t, table.LoadedAt.IsZero())

	idx := table.ColumnIndex()
	assert.Contains(t, idx, domain.ColumnAgent)
	assert.Contains(t, idx, domain.ColumnGIPct)
	assert.Equal(t, "Adams", table.Cell(0, idx[domain.ColumnAgent]))
	assert.Equal(t, "Total", table.Cell(1, idx[domain.ColumnWeek]))
}

func TestLoadCSVRaggedRows(t *testing.T) {
	csvData := "Agent,Week,# Submitted\nAdams,W01,5\nBaker,W02\n"

	table, err := NewLoader(nil).LoadCSV(context.Background(), strings.NewReader(csvData), "ragged.csv")
	require.NoError(t, err)

	assert.Len(t, table.Rows, 2)
	// Bounds-safe access: the missing cell reads as empty.
	assert.Equal(t, "", table.Cell(1, 2))
}

func TestLoadCSVStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty input", "", ErrEmptyTable},
		{"header only", "Agent,Week,# Submitted\n", ErrEmptyTable},
		{"missing agent column", "Name,Week\nAdams,W01\n", ErrMissingColumn},
		{"missing week column", "Agent,# Submitted\nAdams,5\n", ErrMissingColumn},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadCSV(context.Background(), strings.NewReader(tt.data), "bad.csv")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// writeWorkbook creates an xlsx fixture with the given sheets, each holding
// the same minimal agent table.
func writeWorkbook(t *testing.T, path string, sheets ...string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Agent", "Week", "# Submitted"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Adams", "W01", 8}))
		require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Adams", "Total", 8}))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadXLSXPrefersAgentSummarySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "production.xlsx")
	writeWorkbook(t, path, "notes", "Agent Summary")

	table, err := NewLoader(nil).LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Agent Summary", table.Sheet)
	assert.Equal(t, "production.xlsx", table.Source)
	assert.Len(t, table.Rows, 2)
}

func TestLoadXLSXFallsBackToFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "production.xlsx")
	writeWorkbook(t, path, "Sheet1")

	table, err := NewLoader(nil).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", table.Sheet)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	loader := NewLoader(nil)

	t.Run("csv", func(t *testing.T) {
		table, err := loader.Load(context.Background(), strings.NewReader(sampleCSV), "upload.CSV")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 3)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := loader.Load(context.Background(), strings.NewReader("x"), "report.pdf")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(nil).LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
