package inventory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
)

// Format identifies the container a document arrived in.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatODS     Format = "ods"
	FormatUnknown Format = "unknown"
)

// SniffLen is the number of leading bytes CheckFormat inspects.
const SniffLen = 8

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

var extensionFormats = map[string]Format{
	".csv":  FormatCSV,
	".txt":  FormatCSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".xls":  FormatXLS,
	".ods":  FormatODS,
}

// ConversionHint tells users how to get a document the parser accepts.
const ConversionHint = "save the sheet as \"CSV UTF-8 (Comma delimited)\" or convert it with xlsx2csv, then upload the .csv file"

// DetectFormat identifies a document by content first and falls back to its
// extension. Without workbook magic, a name with no extension is treated like
// an unnamed source and read as CSV.
func DetectFormat(name string, head []byte) Format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		if strings.EqualFold(filepath.Ext(name), ".ods") {
			return FormatODS
		}
		return FormatXLSX
	case bytes.HasPrefix(head, oleMagic):
		return FormatXLS
	}

	ext := filepath.Ext(name)
	if ext == "" {
		return FormatCSV
	}
	if f, ok := extensionFormats[strings.ToLower(ext)]; ok {
		return f
	}
	return FormatUnknown
}

// CheckFormat rejects anything but CSV text before a parse is attempted.
func CheckFormat(name string, head []byte) error {
	format := DetectFormat(name, head)
	if format == FormatCSV {
		return nil
	}

	msg := fmt.Sprintf("%s documents are not supported: %s", format, ConversionHint)
	if format == FormatUnknown {
		msg = fmt.Sprintf("file %q is not a CSV document: %s", filepath.Base(name), ConversionHint)
	}
	return apperrors.NewUnsupportedFormatError(msg, ErrUnsupportedFormat).
		WithContext("file", filepath.Base(name)).
		WithContext("format", string(format))
}
