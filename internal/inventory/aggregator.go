package inventory

import (
	"math"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// allocationBuckets lists the new-allocation device classes in display order.
var allocationBuckets = []struct {
	key   domain.AllocationKey
	name  string
	value func(domain.InventoryRecord) float64
}{
	{domain.AllocationGeneralPC, "PC ทั่วไป", func(r domain.InventoryRecord) float64 { return r.NewPC }},
	{domain.AllocationNotebook, "Notebook", func(r domain.InventoryRecord) float64 { return r.NewNB }},
	{domain.AllocationHighSpecPC, "PC สเปคสูง", func(r domain.InventoryRecord) float64 { return r.NewHighSpec }},
}

// Aggregate folds records into summary totals. An empty list yields zeros.
func Aggregate(records []domain.InventoryRecord) domain.AggregateSummary {
	var s domain.AggregateSummary
	for _, r := range records {
		s.TotalPerson += r.TotalPerson
		s.TotalComp += r.TotalComp
		s.TotalGreen += r.TotalGreen
		s.TotalOld += r.TotalOld
		s.NewAlloc += r.TotalNewAlloc
		s.PCGreen += r.PCTotalGreen
		s.NBGreen += r.NBTotalGreen
		s.PCOld += r.PCOld()
		s.NBOld += r.NBOld()
	}
	s.GreenPercentage = GreenPercentage(s.TotalGreen, s.TotalComp)
	return s
}

// GreenPercentage returns green/total as a whole percentage rounded half up,
// or 0 when total is not positive.
func GreenPercentage(green, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(green / total * 100))
}

// Breakdown sums new allocations per device class. Classes whose total is zero
// or negative are left out.
func Breakdown(records []domain.InventoryRecord) []domain.AllocationSlice {
	slices := make([]domain.AllocationSlice, 0, len(allocationBuckets))
	for _, bucket := range allocationBuckets {
		var total float64
		for _, r := range records {
			total += bucket.value(r)
		}
		if total <= 0 {
			continue
		}
		slices = append(slices, domain.AllocationSlice{Key: bucket.key, Name: bucket.name, Value: total})
	}
	return slices
}

// Summarize combines the summary and allocation breakdown of records.
func Summarize(records []domain.InventoryRecord) domain.Report {
	return domain.Report{
		Summary:    Aggregate(records),
		Allocation: Breakdown(records),
		Records:    len(records),
	}
}
