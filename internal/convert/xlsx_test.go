package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
)

// buildWorkbook writes the given sheets, in order, to an in-memory workbook
func buildWorkbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

var reportRows = [][]any{
	{"หน่วยงาน", "ข้าราชการ", "พนักงานราชการ", "ลูกจ้างประจำ", "รวม"},
	{"สำนักงานเลขานุการกรม", 10, 5, 3, 18},
	{"กองคลัง, งานพัสดุ", 4, 2, 0, 6},
	{"รวม", 14, 7, 3, 24},
}

func TestConverter_Convert(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"รายงาน": reportRows}, "รายงาน")

	var out bytes.Buffer
	res, err := NewConverter(nil).Convert(context.Background(), wb, &out, Options{})
	require.NoError(t, err)

	assert.Equal(t, "รายงาน", res.Sheet)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 5, res.Columns)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "สำนักงานเลขานุการกรม,10,5,3,18", lines[1])
	assert.Equal(t, `"กองคลัง, งานพัสดุ",4,2,0,6`, lines[2])
}

func TestConverter_OutputParses(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"Sheet1": reportRows}, "Sheet1")

	var out bytes.Buffer
	_, err := NewConverter(nil).Convert(context.Background(), wb, &out, Options{BOM: true})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	parser := inventory.NewParser(nil, inventory.DefaultParserConfig())
	ds, err := parser.Parse(context.Background(), "converted.csv", out.String())
	require.NoError(t, err)

	require.Len(t, ds.Records, 2)
	assert.Equal(t, "สำนักงานเลขานุการกรม", ds.Records[0].Department)
	assert.Equal(t, 18.0, ds.Records[0].TotalPerson)
	assert.Equal(t, "กองคลัง, งานพัสดุ", ds.Records[1].Department)
	assert.Equal(t, 6.0, ds.Records[1].TotalPerson)
}

func TestConverter_SheetSelection(t *testing.T) {
	sheets := map[string][][]any{
		"Cover": {{"IT inventory report"}, {"fiscal year 2567"}},
		"Data":  reportRows,
	}

	tests := []struct {
		name      string
		sheet     string
		wantSheet string
		wantType  apperrors.ErrorType
	}{
		{name: "auto picks first table-like sheet", wantSheet: "Data"},
		{name: "explicit sheet", sheet: "Cover", wantSheet: "Cover"},
		{name: "missing sheet", sheet: "Nope", wantType: apperrors.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := buildWorkbook(t, sheets, "Cover", "Data")

			var out bytes.Buffer
			res, err := NewConverter(nil).Convert(context.Background(), wb, &out, Options{Sheet: tt.sheet})
			if tt.wantType != "" {
				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantType, appErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSheet, res.Sheet)
		})
	}
}

func TestConverter_NoTableFallsBackToFirstSheet(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{
		"A": {{"notes"}},
		"B": {{"more", "notes"}},
	}, "A", "B")

	var out bytes.Buffer
	res, err := NewConverter(nil).Convert(context.Background(), wb, &out, Options{})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Sheet)
	assert.Equal(t, "notes\n", out.String())
}

func TestConverter_Delimiter(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"S": {{"a", 1, 2}}}, "S")

	var out bytes.Buffer
	_, err := NewConverter(nil).Convert(context.Background(), wb, &out, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, "a;1;2\n", out.String())
}

func TestConverter_InvalidWorkbook(t *testing.T) {
	_, err := NewConverter(nil).Convert(context.Background(), strings.NewReader("not a zip"), &bytes.Buffer{}, Options{})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestConverter_CancelledContext(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"S": reportRows}, "S")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(nil).Convert(ctx, wb, &bytes.Buffer{}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConverter_ConvertFile(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"S": reportRows}, "S")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, wb.Bytes(), 0644))

	var out bytes.Buffer
	res, err := NewConverter(nil).ConvertFile(context.Background(), path, &out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)

	_, err = NewConverter(nil).ConvertFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), &out, Options{})
	assert.Error(t, err)
}

func TestSheetNames(t *testing.T) {
	wb := buildWorkbook(t, map[string][][]any{"One": nil, "Two": nil}, "One", "Two")
	names, err := SheetNames(wb)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, names)
}

func TestConverter_PercentCellsParse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, inventory.ColumnCount)
	row := make([]any, inventory.ColumnCount)
	for i := range row {
		header[i] = "c" + strconv.Itoa(i)
		row[i] = i
	}
	header[0], row[0] = "หน่วยงาน", "กองแผนงาน"
	row[19], row[26] = 1.4242, 1.6565
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))

	style, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "T2", "T2", style))
	require.NoError(t, f.SetCellStyle("Sheet1", "AA2", "AA2", style))

	var wb bytes.Buffer
	_, err = f.WriteTo(&wb)
	require.NoError(t, err)

	tests := []struct {
		name       string
		opts       Options
		ratioGreen float64
		ratioTotal float64
	}{
		{name: "displayed percent", opts: Options{}, ratioGreen: 142.42, ratioTotal: 165.65},
		{name: "raw fraction", opts: Options{Raw: true}, ratioGreen: 1.4242, ratioTotal: 1.6565},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := NewConverter(nil).Convert(context.Background(), bytes.NewReader(wb.Bytes()), &out, tt.opts)
			require.NoError(t, err)

			parser := inventory.NewParser(nil, inventory.DefaultParserConfig())
			ds, err := parser.ParseReader(context.Background(), "", &out)
			require.NoError(t, err)

			require.Len(t, ds.Records, 1)
			rec := ds.Records[0]
			assert.Equal(t, "กองแผนงาน", rec.Department)
			assert.InDelta(t, tt.ratioGreen, rec.RatioGreen, 1e-9)
			assert.InDelta(t, tt.ratioTotal, rec.RatioTotal, 1e-9)
			assert.Equal(t, 18.0, rec.TotalGreen)
		})
	}
}
