// Package exporter writes inventory datasets and their aggregates to files and
// HTTP responses.
//
// CSVWriter is the low-level writer. It handles headers, appending, and the
// UTF-8 BOM that makes spreadsheet tools recognize Thai text.
//
// InventoryExporter builds on it to produce the record table in the report
// layout, a metric/value summary table, and a JSON summary.
//
// Example usage:
//
//	exp := exporter.NewInventoryExporter(logger)
//	err := exp.ExportRecordsFile("out/records.csv", dataset.Records)
//	err = exp.WriteSummary(w, inventory.Summarize(dataset.Records), true)
package exporter
