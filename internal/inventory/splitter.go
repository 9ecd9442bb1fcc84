package inventory

import "strings"

// DefaultDelimiter separates fields in the supported report format.
const DefaultDelimiter = ','

const quoteChar = '"'

// SplitRow splits a line into raw fields. A delimiter separates fields only when
// an even number of quote characters precede it on the line. Quotes and
// surrounding whitespace are kept in the returned fields.
func SplitRow(line string, delim rune) []string {
	fields := make([]string, 0, ColumnCount)

	var (
		field  strings.Builder
		quotes int
	)
	for _, r := range line {
		switch {
		case r == quoteChar:
			quotes++
			field.WriteRune(r)
		case r == delim && quotes%2 == 0:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}

	return append(fields, field.String())
}
