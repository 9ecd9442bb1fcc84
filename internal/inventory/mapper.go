package inventory

import (
	"strings"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// RejectReason explains why a row did not become a record.
type RejectReason string

const (
	RejectIncomplete  RejectReason = "incomplete_row"
	RejectEmptyName   RejectReason = "empty_name"
	RejectTotalMarker RejectReason = "total_marker"
	RejectNoUnits     RejectReason = "no_personnel_or_computers"
)

// MapResult carries either a record or the reason the row was rejected.
type MapResult struct {
	Record domain.InventoryRecord
	Reason RejectReason
}

// OK reports whether the row produced a record.
func (r MapResult) OK() bool {
	return r.Reason == ""
}

// CleanName trims a raw department cell and removes its quote characters.
func CleanName(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(raw), `"`, ""))
}

// MapRecord maps the fields of one data row to a record. The index becomes the
// record ID. Columns missing from a short row decode as zero.
func (s Schema) MapRecord(fields []string, index int) MapResult {
	if len(fields) < s.MinFields {
		return MapResult{Reason: RejectIncomplete}
	}

	var name string
	if idx, ok := s.index(FieldDepartment); ok && idx < len(fields) {
		name = CleanName(fields[idx])
	}
	if name == "" {
		return MapResult{Reason: RejectEmptyName}
	}
	if s.isTotalRow(name) {
		return MapResult{Reason: RejectTotalMarker}
	}

	rec := domain.InventoryRecord{ID: index, Department: name}
	for _, col := range s.Columns {
		target := numericField(&rec, col.Field)
		if target == nil {
			continue
		}
		if col.Index < len(fields) {
			*target = DecodeNumber(fields[col.Index])
		}
	}

	if rec.TotalPerson <= 0 && rec.TotalComp <= 0 {
		return MapResult{Reason: RejectNoUnits}
	}
	return MapResult{Record: rec}
}
