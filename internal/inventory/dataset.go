package inventory

import (
	"time"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// SampleSource is the Source of the built-in sample dataset.
const SampleSource = "sample"

// Rejection records a data line that did not become a record.
type Rejection struct {
	Line   int          `json:"line"`
	Reason RejectReason `json:"reason"`
}

// Dataset is the immutable result of one successful parse. Callers must not
// modify Records; a new parse produces a new Dataset.
type Dataset struct {
	ID     string
	Source string
	// Checksum is the BLAKE2b-256 digest of the normalized document text.
	Checksum   string
	Records    []domain.InventoryRecord
	Rejections []Rejection
	Lines      int
	ParsedAt   time.Time
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// IsSample reports whether the dataset is the built-in sample.
func (d *Dataset) IsSample() bool {
	return d.Source == SampleSource
}

// RejectionCounts groups rejections by reason.
func (d *Dataset) RejectionCounts() map[RejectReason]int {
	counts := make(map[RejectReason]int)
	for _, r := range d.Rejections {
		counts[r.Reason]++
	}
	return counts
}

// Info describes the dataset for API consumers.
func (d *Dataset) Info() domain.DatasetInfo {
	return domain.DatasetInfo{
		ID:       d.ID,
		Source:   d.Source,
		Checksum: d.Checksum,
		Records:  len(d.Records),
		Rejected: len(d.Rejections),
		Lines:    d.Lines,
		ParsedAt: d.ParsedAt,
		IsSample: d.IsSample(),
	}
}
