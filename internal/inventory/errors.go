package inventory

import "errors"

var (
	// ErrParseEmpty is returned when a document yields no valid records.
	ErrParseEmpty = errors.New("no valid inventory rows")

	// ErrUnsupportedFormat is returned when a document is not CSV text.
	ErrUnsupportedFormat = errors.New("unsupported inventory format")
)
