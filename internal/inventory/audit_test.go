package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

func TestAuditor_Sample(t *testing.T) {
	findings := NewAuditor().Audit(SampleRecords())

	type key struct {
		id    int
		field string
	}
	got := make([]key, 0, len(findings))
	for _, f := range findings {
		assert.Equal(t, FindingDeclaredSum, f.Kind)
		got = append(got, key{f.RecordID, f.Field})
	}

	assert.Equal(t, []key{
		{2, "totalNewAlloc"},
		{2, "totalGreen"},
		{4, "totalNewAlloc"},
		{4, "totalGreen"},
	}, got)

	assert.Equal(t, 45.0, findings[0].Declared)
	assert.Equal(t, 41.0, findings[0].Expected)
}

func TestAuditor_AuditRecord(t *testing.T) {
	consistent := domain.InventoryRecord{
		ID: 7, Department: "Consistent",
		Officer: 2, GovEmp: 1, PermEmp: 1, TotalPerson: 4,
		PC63: 1, PC58: 1, PCTotalGreen: 2,
		NBTotalGreen: 0,
		NewPC: 1, TotalNewAlloc: 1,
		TotalGreen: 3, PC57: 1, TotalOld: 1, TotalComp: 4,
		RatioTotal: 100, RatioGreen: 75,
	}

	tests := []struct {
		name      string
		mutate    func(r *domain.InventoryRecord)
		wantKinds []FindingKind
		wantField []string
	}{
		{
			name:   "consistent record",
			mutate: func(r *domain.InventoryRecord) {},
		},
		{
			name:      "negative count",
			mutate:    func(r *domain.InventoryRecord) { r.PC52 = -1; r.PC57 = 2 },
			wantKinds: []FindingKind{FindingShape},
			wantField: []string{"pc52"},
		},
		{
			name:      "missing department",
			mutate:    func(r *domain.InventoryRecord) { r.Department = "" },
			wantKinds: []FindingKind{FindingShape},
			wantField: []string{"department"},
		},
		{
			name:      "declared person total differs",
			mutate:    func(r *domain.InventoryRecord) { r.PermEmp = 0 },
			wantKinds: []FindingKind{FindingDeclaredSum},
			wantField: []string{"totalPerson"},
		},
		{
			name:      "declared ratio differs",
			mutate:    func(r *domain.InventoryRecord) { r.RatioTotal = 110 },
			wantKinds: []FindingKind{FindingRatio},
			wantField: []string{"ratioTotal"},
		},
		{
			name:   "ratio within rounding tolerance",
			mutate: func(r *domain.InventoryRecord) { r.RatioGreen = 75.01 },
		},
	}

	auditor := NewAuditor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := consistent
			tt.mutate(&rec)

			findings := auditor.AuditRecord(rec)
			require.Len(t, findings, len(tt.wantKinds))
			for i, f := range findings {
				assert.Equal(t, tt.wantKinds[i], f.Kind)
				assert.Equal(t, tt.wantField[i], f.Field)
				assert.Equal(t, 7, f.RecordID)
			}
		})
	}
}

func TestAuditor_DeclaredRatiosAreNotRewritten(t *testing.T) {
	records := SampleRecords()
	records[0].RatioTotal = 999

	findings := NewAuditor().Audit(records)

	assert.Equal(t, 999.0, records[0].RatioTotal)
	require.NotEmpty(t, findings)
	assert.Equal(t, FindingRatio, findings[0].Kind)
	assert.Equal(t, 250.0, findings[0].Expected)
}
