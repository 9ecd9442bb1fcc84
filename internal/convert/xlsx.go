package convert

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
)

// Options controls a workbook conversion
type Options struct {
	// Sheet selects the worksheet by name. Empty picks the first sheet that
	// looks like an inventory table.
	Sheet string
	// Raw writes unformatted cell values instead of what the sheet displays.
	Raw bool
	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM       bool
	Delimiter rune
}

// Result describes a finished conversion
type Result struct {
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// Converter converts xlsx workbooks to CSV
type Converter struct {
	logger *slog.Logger
}

// NewConverter creates a converter. A nil logger falls back to slog.Default.
func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{logger: logger.With(slog.String("component", "xlsx_converter"))}
}

// ConvertFile converts the workbook at path
func (c *Converter) ConvertFile(ctx context.Context, path string, w io.Writer, opts Options) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer file.Close()
	return c.Convert(ctx, file, w, opts)
}

// Convert reads a workbook from r and writes the selected sheet to w
func (c *Converter) Convert(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheet, rows, err := c.selectSheet(f, opts)
	if err != nil {
		return Result{}, err
	}

	c.logger.InfoContext(ctx, "Converting worksheet",
		slog.String("sheet", sheet),
		slog.Int("total_rows", len(rows)))

	// Pad every row to the widest one
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	if opts.BOM {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return Result{}, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	padded := make([]string, width)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		clear(padded)
		copy(padded, row)
		if err := writer.Write(padded); err != nil {
			return Result{}, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return Result{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	return Result{Sheet: sheet, Rows: len(rows), Columns: width}, nil
}

// SheetNames lists the worksheets of the workbook read from r
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// selectSheet returns the requested sheet, else the first sheet with a row
// wide enough to be an inventory record, else the first sheet.
func (c *Converter) selectSheet(f *excelize.File, opts Options) (string, [][]string, error) {
	var readOpts []excelize.Options
	if opts.Raw {
		readOpts = append(readOpts, excelize.Options{RawCellValue: true})
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}

	if opts.Sheet != "" {
		idx, err := f.GetSheetIndex(opts.Sheet)
		if err != nil || idx < 0 {
			return "", nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", opts.Sheet)).
				WithContext("available", strings.Join(sheets, ", "))
		}
		rows, err := f.GetRows(opts.Sheet, readOpts...)
		if err != nil {
			return "", nil, apperrors.NewParsingError("failed to read sheet rows", err).WithContext("sheet", opts.Sheet)
		}
		return opts.Sheet, rows, nil
	}

	var first [][]string
	for i, name := range sheets {
		rows, err := f.GetRows(name, readOpts...)
		if err != nil {
			c.logger.Warn("Skipping unreadable sheet",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		if i == 0 {
			first = rows
		}
		for _, row := range rows {
			if len(row) >= inventory.MinFields {
				return name, rows, nil
			}
		}
	}

	return sheets[0], first, nil
}
