// Command invparse parses an inventory report CSV and prints its summary as JSON.
//
//	invparse [flags] report.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phetchalermchai/it-inventory/internal/config"
	"github.com/phetchalermchai/it-inventory/internal/exporter"
	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
	"github.com/phetchalermchai/it-inventory/internal/validation"
	"github.com/phetchalermchai/it-inventory/pkg/contracts"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Output is the JSON document printed on stdout
type Output struct {
	Dataset    domain.DatasetInfo       `json:"dataset"`
	Query      string                   `json:"query,omitempty"`
	Summary    domain.AggregateSummary  `json:"summary"`
	Allocation []domain.AllocationSlice `json:"allocation"`
	Rejections []inventory.Rejection    `json:"rejections,omitempty"`
	Records    []domain.InventoryRecord `json:"records,omitempty"`
	Findings   []inventory.Finding      `json:"findings,omitempty"`
}

type options struct {
	path        string
	query       string
	records     bool
	audit       bool
	exportPath  string
	summaryPath string
	headerRows  int
	delimiter   string
	encoding    string
	maxBytes    int64
	logLevel    string
	version     bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	defaults := config.Default().Dataset

	var opts options
	fs := flag.NewFlagSet("invparse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.query, "q", "", "department name filter (case-insensitive substring)")
	fs.BoolVar(&opts.records, "records", false, "include the parsed records in the output")
	fs.BoolVar(&opts.audit, "audit", false, "include consistency findings in the output")
	fs.StringVar(&opts.exportPath, "export", "", "write the (filtered) records as CSV with a BOM to this file")
	fs.StringVar(&opts.summaryPath, "summary-csv", "", "write the summary as CSV with a BOM to this file")
	fs.IntVar(&opts.headerRows, "header-rows", defaults.HeaderRows, "number of header lines to skip")
	fs.StringVar(&opts.delimiter, "delimiter", defaults.Delimiter, "field delimiter")
	fs.StringVar(&opts.encoding, "encoding", "", "legacy encoding for non UTF-8 input (windows-874)")
	fs.Int64Var(&opts.maxBytes, "max-bytes", defaults.MaxUploadBytes, "maximum document size in bytes")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: invparse [flags] report.csv")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.version {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("exactly one input file is required")
	}
	opts.path = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	logger := infrastructure.NewLogger(config.LoggingConfig{Level: opts.logLevel}, stderr).
		With(slog.String("command", "invparse"))

	if err := validation.NewFileValidator(logger, opts.maxBytes).ValidateInventoryFile(opts.path); err != nil {
		fmt.Fprintf(stderr, "invparse: %v\n", err)
		return exitError
	}

	cfg := inventory.DefaultParserConfig()
	cfg.HeaderRows = opts.headerRows
	cfg.Delimiter = config.DatasetConfig{Delimiter: opts.delimiter}.DelimiterRune()
	cfg.MaxBytes = opts.maxBytes
	cfg.LegacyEncoding = opts.encoding

	ds, err := inventory.NewParser(logger, cfg).ParseFile(ctx, opts.path)
	if err != nil {
		fmt.Fprintf(stderr, "invparse: %v\n", err)
		if errors.Is(err, inventory.ErrUnsupportedFormat) {
			fmt.Fprintf(stderr, "hint: %s\n", inventory.ConversionHint)
		}
		return exitError
	}

	records := inventory.FilterByDepartment(ds.Records, opts.query)
	report := inventory.Summarize(records)

	out := Output{
		Dataset:    ds.Info(),
		Query:      opts.query,
		Summary:    report.Summary,
		Allocation: report.Allocation,
		Rejections: ds.Rejections,
	}
	if opts.records {
		out.Records = records
	}
	if opts.audit {
		out.Findings = inventory.NewAuditor().Audit(records)
	}

	exp := exporter.NewInventoryExporter(logger)
	if opts.exportPath != "" {
		if err := exp.ExportRecordsFile(opts.exportPath, records); err != nil {
			fmt.Fprintf(stderr, "invparse: %v\n", err)
			return exitError
		}
	}
	if opts.summaryPath != "" {
		if err := exp.ExportSummaryFile(opts.summaryPath, report); err != nil {
			fmt.Fprintf(stderr, "invparse: %v\n", err)
			return exitError
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "invparse: failed to write output: %v\n", err)
		return exitError
	}
	return exitOK
}
