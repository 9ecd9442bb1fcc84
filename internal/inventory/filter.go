package inventory

import (
	"strings"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// FilterByDepartment returns the records whose department contains query,
// ignoring case, in their original order. An empty query matches every record.
// The result never shares its backing array with records.
func FilterByDepartment(records []domain.InventoryRecord, query string) []domain.InventoryRecord {
	needle := strings.ToLower(query)
	matched := make([]domain.InventoryRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Department), needle) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Departments projects records into per-department views for the detailed view.
func Departments(records []domain.InventoryRecord) []domain.DepartmentView {
	views := make([]domain.DepartmentView, 0, len(records))
	for _, r := range records {
		views = append(views, domain.DepartmentView{
			ID:          r.ID,
			Department:  r.Department,
			TotalPerson: r.TotalPerson,
			PCGreen:     r.PCTotalGreen,
			NBGreen:     r.NBTotalGreen,
			PCOld:       r.PCOld(),
			NBOld:       r.NBOld(),
			TotalGreen:  r.TotalGreen,
			TotalOld:    r.TotalOld,
			TotalComp:   r.TotalComp,
			RatioTotal:  r.RatioTotal,
			RatioGreen:  r.RatioGreen,
		})
	}
	return views
}
