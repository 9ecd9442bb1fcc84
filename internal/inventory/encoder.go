package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// Encoder writes records in the positional report layout, so that parsing its
// output yields the same records. Department names containing the delimiter
// are quoted. Line breaks in names are written as spaces.
type Encoder struct {
	schema    Schema
	delimiter rune
}

// NewEncoder creates an encoder for schema using the default delimiter.
func NewEncoder(schema Schema) *Encoder {
	return &Encoder{schema: schema, delimiter: DefaultDelimiter}
}

// Header returns the header row written before the records.
func (e *Encoder) Header() []string {
	header := make([]string, e.schema.Width())
	for _, col := range e.schema.Columns {
		header[col.Index] = string(col.Field)
	}
	return header
}

// Encode writes a header row followed by one row per record.
func (e *Encoder) Encode(w io.Writer, records []domain.InventoryRecord) error {
	writer := csv.NewWriter(w)
	writer.Comma = e.delimiter

	if err := writer.Write(e.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, e.schema.Width())
	for i := range records {
		e.fillRow(row, &records[i])
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", records[i].ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func (e *Encoder) fillRow(row []string, rec *domain.InventoryRecord) {
	for i := range row {
		row[i] = ""
	}
	for _, col := range e.schema.Columns {
		if col.Field == FieldDepartment {
			row[col.Index] = lineBreaks.Replace(rec.Department)
			continue
		}
		if v := numericField(rec, col.Field); v != nil {
			row[col.Index] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
}

// EncodeCSV writes records in the default report layout.
func EncodeCSV(w io.Writer, records []domain.InventoryRecord) error {
	return NewEncoder(DefaultSchema()).Encode(w, records)
}
