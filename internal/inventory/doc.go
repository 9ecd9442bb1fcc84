// Package inventory implements ingestion and aggregation of IT inventory reports.
// A report is a CSV document with one row per organizational unit carrying
// personnel headcounts and computer counts by acquisition-year bracket.
//
// # Architecture
//
// The package is organized leaf first:
//
// 1. Decoder: DecodeNumber turns a raw cell into a float64, treating malformed cells as zero
// 2. Splitter: SplitRow splits one line on a delimiter outside quoted spans
// 3. Schema: a declarative field to column table, MapRecord classifies each row
// 4. Parser: drives the splitter and schema over a document and builds a Dataset
// 5. Aggregator: Aggregate, Breakdown and Summarize reduce records to dashboard totals
// 6. Filter: FilterByDepartment projects records for display
//
// # Usage
//
//	parser := inventory.NewParser(logger, inventory.DefaultParserConfig())
//	ds, err := parser.ParseFile(ctx, "inventory.csv")
//	if errors.Is(err, inventory.ErrParseEmpty) {
//	    // keep the previous dataset
//	}
//	report := inventory.Summarize(ds.Records)
//
// # Data Flow
//
//	CSV text → Parser (SplitRow, Schema.MapRecord, DecodeNumber) → Dataset → Summarize → Report
//
// # Error Handling
//
// Only document-level conditions are returned as errors:
//
//	- ErrUnsupportedFormat when the source is a binary spreadsheet or has a foreign extension
//	- ErrParseEmpty when no row survived mapping
//
// Row-level problems are recorded as Rejections on the Dataset and never escalate.
// Aggregation and filtering are total functions and never fail.
package inventory
