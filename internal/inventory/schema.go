package inventory

import (
	"strings"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// Field names a record attribute that is read from a report column.
type Field string

const (
	FieldDepartment    Field = "department"
	FieldOfficer       Field = "officer"
	FieldGovEmp        Field = "govEmp"
	FieldPermEmp       Field = "permEmp"
	FieldTotalPerson   Field = "totalPerson"
	FieldPC63          Field = "pc63"
	FieldPC58          Field = "pc58"
	FieldPCTotalGreen  Field = "pcTotalGreen"
	FieldNB63          Field = "nb63"
	FieldNB58          Field = "nb58"
	FieldNBTotalGreen  Field = "nbTotalGreen"
	FieldNewPC         Field = "newPc"
	FieldNewNB         Field = "newNb"
	FieldNewHighSpec   Field = "newHighSpec"
	FieldTotalNewAlloc Field = "totalNewAlloc"
	FieldTotalGreen    Field = "totalGreen"
	FieldRatioGreen    Field = "ratioGreen"
	FieldPC57          Field = "pc57"
	FieldPC52          Field = "pc52"
	FieldNB57          Field = "nb57"
	FieldNB52          Field = "nb52"
	FieldTotalOld      Field = "totalOld"
	FieldTotalComp     Field = "totalComp"
	FieldRatioTotal    Field = "ratioTotal"
)

// ColumnCount is the width of the report layout, unused columns included.
const ColumnCount = 27

// MinFields is the smallest field count a row needs to be mapped.
const MinFields = 5

// Column binds a record field to its zero-based position in a report row.
type Column struct {
	Field Field
	Index int
}

// Schema is the positional contract between report producers and the mapper.
type Schema struct {
	Columns      []Column
	MinFields    int
	TotalMarkers []string
}

// DefaultSchema returns the 27-column layout of the inventory report.
// Columns 11 to 13 are present in the report but carry nothing the dashboard uses.
func DefaultSchema() Schema {
	return Schema{
		Columns: []Column{
			{FieldDepartment, 0},
			{FieldOfficer, 1},
			{FieldGovEmp, 2},
			{FieldPermEmp, 3},
			{FieldTotalPerson, 4},
			{FieldPC63, 5},
			{FieldPC58, 6},
			{FieldPCTotalGreen, 7},
			{FieldNB63, 8},
			{FieldNB58, 9},
			{FieldNBTotalGreen, 10},
			{FieldNewPC, 14},
			{FieldNewNB, 15},
			{FieldNewHighSpec, 16},
			{FieldTotalNewAlloc, 17},
			{FieldTotalGreen, 18},
			{FieldRatioGreen, 19},
			{FieldPC57, 20},
			{FieldPC52, 21},
			{FieldNB57, 22},
			{FieldNB52, 23},
			{FieldTotalOld, 24},
			{FieldTotalComp, 25},
			{FieldRatioTotal, 26},
		},
		MinFields:    MinFields,
		TotalMarkers: []string{"รวม", "Total"},
	}
}

// Width returns the number of columns needed to hold every mapped field.
func (s Schema) Width() int {
	width := 0
	for _, col := range s.Columns {
		if col.Index+1 > width {
			width = col.Index + 1
		}
	}
	return width
}

// index returns the column bound to f.
func (s Schema) index(f Field) (int, bool) {
	for _, col := range s.Columns {
		if col.Field == f {
			return col.Index, true
		}
	}
	return 0, false
}

// isTotalRow reports whether a department name marks a grand-total row.
func (s Schema) isTotalRow(name string) bool {
	for _, marker := range s.TotalMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// numericField returns a pointer to the numeric attribute backing f,
// or nil for non-numeric fields.
func numericField(rec *domain.InventoryRecord, f Field) *float64 {
	switch f {
	case FieldOfficer:
		return &rec.Officer
	case FieldGovEmp:
		return &rec.GovEmp
	case FieldPermEmp:
		return &rec.PermEmp
	case FieldTotalPerson:
		return &rec.TotalPerson
	case FieldPC63:
		return &rec.PC63
	case FieldPC58:
		return &rec.PC58
	case FieldPCTotalGreen:
		return &rec.PCTotalGreen
	case FieldNB63:
		return &rec.NB63
	case FieldNB58:
		return &rec.NB58
	case FieldNBTotalGreen:
		return &rec.NBTotalGreen
	case FieldNewPC:
		return &rec.NewPC
	case FieldNewNB:
		return &rec.NewNB
	case FieldNewHighSpec:
		return &rec.NewHighSpec
	case FieldTotalNewAlloc:
		return &rec.TotalNewAlloc
	case FieldTotalGreen:
		return &rec.TotalGreen
	case FieldRatioGreen:
		return &rec.RatioGreen
	case FieldPC57:
		return &rec.PC57
	case FieldPC52:
		return &rec.PC52
	case FieldNB57:
		return &rec.NB57
	case FieldNB52:
		return &rec.NB52
	case FieldTotalOld:
		return &rec.TotalOld
	case FieldTotalComp:
		return &rec.TotalComp
	case FieldRatioTotal:
		return &rec.RatioTotal
	}
	return nil
}
