package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
)

// Sentinel errors for structural load failures. Callers map these onto API
// errors or CLI exit codes with errors.Is.
var (
	// ErrUnsupportedFormat means the file extension is neither CSV nor a
	// supported Excel workbook format.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrMissingColumn means a required column (Agent, Week) is absent from
	// the header row.
	ErrMissingColumn = errors.New("required column missing")

	// ErrEmptyTable means the source parsed but carried no data rows.
	ErrEmptyTable = errors.New("dataset contains no data rows")
)

// preferredSheet is the worksheet name production workbooks use for the
// agent table. Matching is case-insensitive after trimming; when no sheet
// matches, the first sheet is used.
const preferredSheet = "agent summary"

// Loader reads agent production datasets from CSV files or Excel workbooks.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a loader logging through the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile loads a dataset from disk, dispatching on the file extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.ProductionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f, filepath.Base(path))
}

// Load reads a dataset from r, using the source filename's extension to
// pick the format. The returned table is structurally validated.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string) (*domain.ProductionTable, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		return l.LoadCSV(ctx, r, source)
	case ".xlsx", ".xlsm":
		return l.LoadXLSX(ctx, r, source)
	default:
		return nil, fmt.Errorf("%q: %w", source, ErrUnsupportedFormat)
	}
}

// LoadCSV reads a comma-separated dataset. The first record is the header
// row; rows may be ragged (short rows read as trailing blanks downstream).
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader, source string) (*domain.ProductionTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV %q: %w", source, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%q: %w", source, ErrEmptyTable)
	}

	table := &domain.ProductionTable{
		Headers:  trimAll(records[0]),
		Rows:     records[1:],
		Source:   source,
		LoadedAt: time.Now(),
	}
	return l.finish(ctx, table)
}

// LoadXLSX reads an Excel workbook, preferring the agent summary worksheet
// and falling back to the workbook's first sheet.
func (l *Loader) LoadXLSX(ctx context.Context, r io.Reader, source string) (*domain.ProductionTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", source, err)
	}
	defer f.Close()

	sheet := pickSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %q has no sheets: %w", source, ErrEmptyTable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %q: %w", sheet, source, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q of %q: %w", sheet, source, ErrEmptyTable)
	}

	table := &domain.ProductionTable{
		Headers:  trimAll(rows[0]),
		Rows:     rows[1:],
		Source:   source,
		Sheet:    sheet,
		LoadedAt: time.Now(),
	}
	return l.finish(ctx, table)
}

// finish applies the structural contract and logs the load.
func (l *Loader) finish(ctx context.Context, table *domain.ProductionTable) (*domain.ProductionTable, error) {
	idx := table.ColumnIndex()
	for _, col := range domain.RequiredColumns() {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%q in %q: %w", col, table.Source, ErrMissingColumn)
		}
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%q: %w", table.Source, ErrEmptyTable)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", table.Source),
		slog.String("sheet", table.Sheet),
		slog.Int("columns", len(table.Headers)),
		slog.Int("rows", len(table.Rows)),
	)
	return table, nil
}

// pickSheet returns the preferred worksheet name, or the first sheet when
// no name matches.
func pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), preferredSheet) {
			return name
		}
	}
	return sheets[0]
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
