package inventory

import (
	"math"
	"strconv"
	"strings"
)

// cellCleaner removes quote characters and thousands separators from a numeric cell.
var cellCleaner = strings.NewReplacer(`"`, "", ",", "")

// DecodeNumber converts a raw CSV cell into a number. The longest leading
// decimal number is read and anything after it is ignored, so "150%" and
// "12 units" keep their values. Empty cells and cells without a leading
// number decode to 0.
func DecodeNumber(raw string) float64 {
	prefix := leadingDecimal(strings.TrimSpace(cellCleaner.Replace(raw)))
	if prefix == "" {
		return 0
	}

	value, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// leadingDecimal returns the longest prefix of s of the form
// [sign] digits [. digits] [e [sign] digits] with at least one mantissa digit.
// Hex, underscore and named forms (Inf, NaN) have no such prefix beyond their
// first digit.
func leadingDecimal(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := countDigits(s[i:])
	i += digits
	if i < len(s) && s[i] == '.' {
		frac := countDigits(s[i+1:])
		if digits+frac > 0 {
			i += 1 + frac
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if exp := countDigits(s[j:]); exp > 0 {
			i = j + exp
		}
	}
	return s[:i]
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
