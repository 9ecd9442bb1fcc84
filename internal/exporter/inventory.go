package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/phetchalermchai/it-inventory/internal/inventory"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// SummaryHeaders is the header row of the summary table
var SummaryHeaders = []string{"metric", "value"}

// InventoryExporter writes datasets and reports
type InventoryExporter struct {
	csv     *CSVWriter
	encoder *inventory.Encoder
	logger  *slog.Logger
}

// NewInventoryExporter creates an exporter for the default report layout
func NewInventoryExporter(logger *slog.Logger) *InventoryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryExporter{
		csv:     NewCSVWriter(),
		encoder: inventory.NewEncoder(inventory.DefaultSchema()),
		logger:  logger.With(slog.String("component", "exporter")),
	}
}

// WriteRecords writes records in the report layout. The output parses back
// into the same records.
func (e *InventoryExporter) WriteRecords(w io.Writer, records []domain.InventoryRecord, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	return e.encoder.Encode(w, records)
}

// SummaryRows flattens a report into metric/value rows. Allocation buckets
// follow the headline figures under an "allocation:" prefix.
func SummaryRows(report domain.Report) [][]string {
	s := report.Summary
	rows := [][]string{
		{"records", formatInt(report.Records)},
		{"totalPerson", formatFloat(s.TotalPerson)},
		{"totalComp", formatFloat(s.TotalComp)},
		{"totalGreen", formatFloat(s.TotalGreen)},
		{"totalOld", formatFloat(s.TotalOld)},
		{"newAlloc", formatFloat(s.NewAlloc)},
		{"pcGreen", formatFloat(s.PCGreen)},
		{"nbGreen", formatFloat(s.NBGreen)},
		{"pcOld", formatFloat(s.PCOld)},
		{"nbOld", formatFloat(s.NBOld)},
		{"greenPercentage", formatInt(s.GreenPercentage)},
	}
	for _, slice := range report.Allocation {
		rows = append(rows, []string{"allocation:" + slice.Name, formatFloat(slice.Value)})
	}
	return rows
}

// WriteSummary writes the metric/value table for report
func (e *InventoryExporter) WriteSummary(w io.Writer, report domain.Report, bom bool) error {
	return e.csv.Write(w, WriteOptions{
		Headers:   SummaryHeaders,
		Records:   SummaryRows(report),
		BOMPrefix: bom,
	})
}

// WriteSummaryJSON writes report as indented JSON
func (e *InventoryExporter) WriteSummaryJSON(w io.Writer, report domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ExportRecordsFile writes records to filePath with a BOM
func (e *InventoryExporter) ExportRecordsFile(filePath string, records []domain.InventoryRecord) error {
	e.logger.Info("Writing records CSV",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(records)))

	return writeFile(filePath, false, func(w io.Writer) error {
		return e.WriteRecords(w, records, true)
	})
}

// ExportSummaryFile writes the summary table of report to filePath with a BOM
func (e *InventoryExporter) ExportSummaryFile(filePath string, report domain.Report) error {
	e.logger.Info("Writing summary CSV",
		slog.String("file_path", filePath),
		slog.Int("record_count", report.Records))

	return e.csv.WriteCSV(filePath, WriteOptions{
		Headers:   SummaryHeaders,
		Records:   SummaryRows(report),
		BOMPrefix: true,
	})
}
