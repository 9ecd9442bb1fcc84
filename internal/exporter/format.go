package exporter

import (
	"strconv"
)

// formatFloat formats counts without a trailing fraction when they are whole
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
