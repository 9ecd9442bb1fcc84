package inventory

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// FindingKind classifies an audit finding.
type FindingKind string

const (
	FindingShape       FindingKind = "shape"
	FindingDeclaredSum FindingKind = "declared_sum"
	FindingRatio       FindingKind = "ratio"
)

const (
	sumTolerance   = 1e-9
	ratioTolerance = 0.01 + 1e-9
)

// Finding reports a record value that does not match what its parts imply.
// Findings are informational; records are never changed or rejected by them.
type Finding struct {
	RecordID   int         `json:"record_id"`
	Department string      `json:"department"`
	Kind       FindingKind `json:"kind"`
	Field      string      `json:"field"`
	Declared   float64     `json:"declared"`
	Expected   float64     `json:"expected,omitempty"`
	Message    string      `json:"message"`
}

type declaredSum struct {
	field    Field
	declared func(domain.InventoryRecord) float64
	parts    func(domain.InventoryRecord) float64
}

var declaredSums = []declaredSum{
	{FieldTotalPerson,
		func(r domain.InventoryRecord) float64 { return r.TotalPerson },
		func(r domain.InventoryRecord) float64 { return r.Officer + r.GovEmp + r.PermEmp }},
	{FieldPCTotalGreen,
		func(r domain.InventoryRecord) float64 { return r.PCTotalGreen },
		func(r domain.InventoryRecord) float64 { return r.PC63 + r.PC58 }},
	{FieldNBTotalGreen,
		func(r domain.InventoryRecord) float64 { return r.NBTotalGreen },
		func(r domain.InventoryRecord) float64 { return r.NB63 + r.NB58 }},
	{FieldTotalNewAlloc,
		func(r domain.InventoryRecord) float64 { return r.TotalNewAlloc },
		func(r domain.InventoryRecord) float64 { return r.NewPC + r.NewNB + r.NewHighSpec }},
	{FieldTotalGreen,
		func(r domain.InventoryRecord) float64 { return r.TotalGreen },
		func(r domain.InventoryRecord) float64 { return r.PCTotalGreen + r.NBTotalGreen + r.TotalNewAlloc }},
	{FieldTotalOld,
		func(r domain.InventoryRecord) float64 { return r.TotalOld },
		func(r domain.InventoryRecord) float64 { return r.PCOld() + r.NBOld() }},
	{FieldTotalComp,
		func(r domain.InventoryRecord) float64 { return r.TotalComp },
		func(r domain.InventoryRecord) float64 { return r.TotalGreen + r.TotalOld }},
}

// Auditor checks records for negative counts and declared totals that
// disagree with their components.
type Auditor struct {
	validate *validator.Validate
}

// NewAuditor creates an auditor.
func NewAuditor() *Auditor {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Auditor{validate: v}
}

// Audit checks every record and returns the findings in record order.
func (a *Auditor) Audit(records []domain.InventoryRecord) []Finding {
	findings := make([]Finding, 0)
	for _, r := range records {
		findings = append(findings, a.AuditRecord(r)...)
	}
	return findings
}

// AuditRecord checks a single record.
func (a *Auditor) AuditRecord(r domain.InventoryRecord) []Finding {
	var findings []Finding

	if err := a.validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				findings = append(findings, Finding{
					RecordID:   r.ID,
					Department: r.Department,
					Kind:       FindingShape,
					Field:      fe.Field(),
					Declared:   toFloat(fe.Value()),
					Message:    fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag()),
				})
			}
		}
	}

	for _, sum := range declaredSums {
		declared, expected := sum.declared(r), sum.parts(r)
		if math.Abs(declared-expected) > sumTolerance {
			findings = append(findings, Finding{
				RecordID:   r.ID,
				Department: r.Department,
				Kind:       FindingDeclaredSum,
				Field:      string(sum.field),
				Declared:   declared,
				Expected:   expected,
				Message:    fmt.Sprintf("declared %s differs from the sum of its parts", sum.field),
			})
		}
	}

	if r.TotalPerson > 0 {
		findings = appendRatioFinding(findings, r, FieldRatioTotal, r.RatioTotal, r.TotalComp)
		findings = appendRatioFinding(findings, r, FieldRatioGreen, r.RatioGreen, r.TotalGreen)
	}
	return findings
}

func appendRatioFinding(findings []Finding, r domain.InventoryRecord, field Field, declared, count float64) []Finding {
	expected := math.Round(count/r.TotalPerson*100*100) / 100
	if math.Abs(declared-expected) <= ratioTolerance {
		return findings
	}
	return append(findings, Finding{
		RecordID:   r.ID,
		Department: r.Department,
		Kind:       FindingRatio,
		Field:      string(field),
		Declared:   declared,
		Expected:   expected,
		Message:    fmt.Sprintf("declared %s differs from the per-person ratio", field),
	})
}

func toFloat(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
