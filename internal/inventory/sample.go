package inventory

import (
	"time"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// SampleRecords returns the reference report served before any upload.
func SampleRecords() []domain.InventoryRecord {
	return []domain.InventoryRecord{
		{
			ID: 0, Department: "กลุ่มตรวจสอบภายใน (ตน.)",
			Officer: 1, GovEmp: 1, PermEmp: 0, TotalPerson: 2,
			PC63: 1, PC58: 1, PCTotalGreen: 2,
			NB63: 1, NB58: 0, NBTotalGreen: 1,
			NewPC: 0, NewNB: 0, NewHighSpec: 0, TotalNewAlloc: 0,
			PC57: 1, PC52: 0, NB57: 0, NB52: 1,
			TotalGreen: 3, TotalOld: 2, TotalComp: 5,
			RatioGreen: 150, RatioTotal: 250,
		},
		{
			ID: 1, Department: "กลุ่มพัฒนาระบบบริหาร (พร.)",
			Officer: 3, GovEmp: 2, PermEmp: 0, TotalPerson: 5,
			PC63: 0, PC58: 2, PCTotalGreen: 2,
			NB63: 3, NB58: 1, NBTotalGreen: 4,
			NewPC: 0, NewNB: 0, NewHighSpec: 1, TotalNewAlloc: 1,
			PC57: 0, PC52: 1, NB57: 0, NB52: 0,
			TotalGreen: 7, TotalOld: 1, TotalComp: 8,
			RatioGreen: 140, RatioTotal: 160,
		},
		{
			ID: 2, Department: "สำนักงานเลขานุการกรม (สลก.)",
			Officer: 43, GovEmp: 38, PermEmp: 18, TotalPerson: 99,
			PC63: 30, PC58: 51, PCTotalGreen: 81,
			NB63: 8, NB58: 3, NBTotalGreen: 11,
			NewPC: 20, NewNB: 10, NewHighSpec: 11, TotalNewAlloc: 45,
			PC57: 15, PC52: 8, NB57: 0, NB52: 0,
			TotalGreen: 141, TotalOld: 23, TotalComp: 164,
			RatioGreen: 142.42, RatioTotal: 165.65,
		},
		{
			ID: 3, Department: "สถาบันวิทยาศาสตร์เทคโนโลยีชุมชน (สทช.)",
			Officer: 35, GovEmp: 35, PermEmp: 3, TotalPerson: 73,
			PC63: 26, PC58: 26, PCTotalGreen: 52,
			NB63: 18, NB58: 0, NBTotalGreen: 18,
			NewPC: 15, NewNB: 13, NewHighSpec: 7, TotalNewAlloc: 35,
			PC57: 19, PC52: 14, NB57: 1, NB52: 1,
			TotalGreen: 105, TotalOld: 35, TotalComp: 140,
			RatioGreen: 143.83, RatioTotal: 191.78,
		},
		{
			ID: 4, Department: "สำนักบริหารและรับรองห้องปฏิบัติการ (สบร.)",
			Officer: 22, GovEmp: 11, PermEmp: 0, TotalPerson: 33,
			PC63: 9, PC58: 13, PCTotalGreen: 22,
			NB63: 13, NB58: 1, NBTotalGreen: 14,
			NewPC: 4, NewNB: 4, NewHighSpec: 2, TotalNewAlloc: 11,
			PC57: 12, PC52: 9, NB57: 0, NB52: 1,
			TotalGreen: 48, TotalOld: 22, TotalComp: 70,
			RatioGreen: 145.45, RatioTotal: 212.12,
		},
	}
}

// SampleDataset wraps SampleRecords in a Dataset.
func SampleDataset() *Dataset {
	records := SampleRecords()
	return &Dataset{
		ID:       "sample",
		Source:   SampleSource,
		Records:  records,
		Lines:    len(records),
		ParsedAt: time.Now(),
	}
}
