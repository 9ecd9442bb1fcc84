// Package api contains the request contracts of the inventory HTTP API.
package api

// RecordsQuery filters record, summary and department listings
type RecordsQuery struct {
	Q string `json:"q" query:"q" validate:"max=200"`
}

// ExportQuery selects what the export endpoint writes
type ExportQuery struct {
	Q      string `json:"q" query:"q" validate:"max=200"`
	Kind   string `json:"kind" query:"kind" validate:"omitempty,oneof=records summary"`
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv json"`
}

// Export kinds
const (
	ExportRecords = "records"
	ExportSummary = "summary"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Normalize fills in the defaults for omitted fields
func (q *ExportQuery) Normalize() {
	if q.Kind == "" {
		q.Kind = ExportRecords
	}
	if q.Format == "" {
		q.Format = FormatCSV
	}
}

// UploadRequest describes the document part of a multipart upload
type UploadRequest struct {
	Filename string `json:"filename" query:"filename" validate:"required,max=255,filename"`
	Size     int64  `json:"size" query:"size" validate:"gte=0"`
}
