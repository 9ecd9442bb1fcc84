package domain

import "time"

// InventoryRecord is one organizational unit's personnel and equipment snapshot
// as reported in a single row of the inventory report.
type InventoryRecord struct {
	ID         int    `json:"id"`
	Department string `json:"department" validate:"required"`

	// Personnel
	Officer     float64 `json:"officer" validate:"gte=0"`
	GovEmp      float64 `json:"govEmp" validate:"gte=0"`
	PermEmp     float64 `json:"permEmp" validate:"gte=0"`
	TotalPerson float64 `json:"totalPerson" validate:"gte=0"`

	// Desktop computers by acquisition year bracket
	PC63         float64 `json:"pc63" validate:"gte=0"`
	PC58         float64 `json:"pc58" validate:"gte=0"`
	PCTotalGreen float64 `json:"pcTotalGreen" validate:"gte=0"`
	PC57         float64 `json:"pc57" validate:"gte=0"`
	PC52         float64 `json:"pc52" validate:"gte=0"`

	// Notebooks by acquisition year bracket
	NB63         float64 `json:"nb63" validate:"gte=0"`
	NB58         float64 `json:"nb58" validate:"gte=0"`
	NBTotalGreen float64 `json:"nbTotalGreen" validate:"gte=0"`
	NB57         float64 `json:"nb57" validate:"gte=0"`
	NB52         float64 `json:"nb52" validate:"gte=0"`

	// New allocation for the current reporting period
	NewPC         float64 `json:"newPc" validate:"gte=0"`
	NewNB         float64 `json:"newNb" validate:"gte=0"`
	NewHighSpec   float64 `json:"newHighSpec" validate:"gte=0"`
	TotalNewAlloc float64 `json:"totalNewAlloc" validate:"gte=0"`

	// Rollups
	TotalGreen float64 `json:"totalGreen" validate:"gte=0"`
	TotalOld   float64 `json:"totalOld" validate:"gte=0"`
	TotalComp  float64 `json:"totalComp" validate:"gte=0"`

	// Coverage ratios in percent, as declared by the report
	RatioGreen float64 `json:"ratioGreen" validate:"gte=0"`
	RatioTotal float64 `json:"ratioTotal" validate:"gte=0"`
}

// PCOld returns the aged desktop count.
func (r InventoryRecord) PCOld() float64 {
	return r.PC57 + r.PC52
}

// NBOld returns the aged notebook count.
func (r InventoryRecord) NBOld() float64 {
	return r.NB57 + r.NB52
}

// AggregateSummary holds totals across a record list.
type AggregateSummary struct {
	TotalPerson     float64 `json:"totalPerson"`
	TotalComp       float64 `json:"totalComp"`
	TotalGreen      float64 `json:"totalGreen"`
	TotalOld        float64 `json:"totalOld"`
	NewAlloc        float64 `json:"newAlloc"`
	PCGreen         float64 `json:"pcGreen"`
	NBGreen         float64 `json:"nbGreen"`
	PCOld           float64 `json:"pcOld"`
	NBOld           float64 `json:"nbOld"`
	GreenPercentage int     `json:"greenPercentage"`
}

// AllocationKey identifies a new-allocation device class
type AllocationKey string

const (
	AllocationGeneralPC  AllocationKey = "general_pc"
	AllocationNotebook   AllocationKey = "notebook"
	AllocationHighSpecPC AllocationKey = "high_spec_pc"
)

// AllocationSlice is one non-zero bucket of the new-allocation breakdown.
type AllocationSlice struct {
	Key   AllocationKey `json:"key"`
	Name  string        `json:"name"`
	Value float64       `json:"value"`
}

// Report is the aggregate output handed to presentation layers.
type Report struct {
	Summary    AggregateSummary  `json:"summary"`
	Allocation []AllocationSlice `json:"allocation"`
	Records    int               `json:"records"`
}

// DepartmentView is the per-department projection used by the detailed view.
type DepartmentView struct {
	ID          int     `json:"id"`
	Department  string  `json:"department"`
	TotalPerson float64 `json:"totalPerson"`
	PCGreen     float64 `json:"pcGreen"`
	NBGreen     float64 `json:"nbGreen"`
	PCOld       float64 `json:"pcOld"`
	NBOld       float64 `json:"nbOld"`
	TotalGreen  float64 `json:"totalGreen"`
	TotalOld    float64 `json:"totalOld"`
	TotalComp   float64 `json:"totalComp"`
	RatioTotal  float64 `json:"ratioTotal"`
	RatioGreen  float64 `json:"ratioGreen"`
}

// DatasetInfo describes the dataset currently served.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Checksum string    `json:"checksum"`
	Records  int       `json:"records"`
	Rejected int       `json:"rejected"`
	Lines    int       `json:"lines"`
	ParsedAt time.Time `json:"parsed_at"`
	IsSample bool      `json:"is_sample"`
}
