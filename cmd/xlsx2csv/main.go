// Command xlsx2csv converts an inventory workbook sheet to a CSV document
// the dashboard accepts.
//
//	xlsx2csv [flags] report.xlsx
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phetchalermchai/it-inventory/internal/config"
	"github.com/phetchalermchai/it-inventory/internal/convert"
	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/internal/validation"
	"github.com/phetchalermchai/it-inventory/pkg/contracts"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	path      string
	sheet     string
	output    string
	raw       bool
	bom       bool
	list      bool
	delimiter string
	logLevel  string
	version   bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("xlsx2csv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet to convert (default: first sheet that looks like a report)")
	fs.StringVar(&opts.output, "o", "", "output file (default: stdout)")
	fs.BoolVar(&opts.raw, "raw", false, "write raw cell values instead of displayed values")
	fs.BoolVar(&opts.bom, "bom", true, "prefix the output with a UTF-8 byte order mark")
	fs.BoolVar(&opts.list, "list", false, "list the worksheets and exit")
	fs.StringVar(&opts.delimiter, "delimiter", ",", "field delimiter")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: xlsx2csv [flags] report.xlsx")
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
		return opts, errors.New("exactly one workbook is required")
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
		With(slog.String("command", "xlsx2csv"))

	validator := validation.NewFileValidator(logger, 0)
	if err := validator.ValidateExcelFile(opts.path); err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
		return exitError
	}

	if opts.list {
		return listSheets(opts.path, stdout, stderr)
	}

	conv := convert.NewConverter(logger)
	convOpts := convert.Options{
		Sheet:     opts.sheet,
		Raw:       opts.raw,
		BOM:       opts.bom,
		Delimiter: config.DatasetConfig{Delimiter: opts.delimiter}.DelimiterRune(),
	}

	if opts.output == "" {
		if _, err := conv.ConvertFile(ctx, opts.path, stdout, convOpts); err != nil {
			fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if err := validator.ValidateOutputDirectory(filepath.Dir(opts.output)); err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
		return exitError
	}

	// Convert fully before touching the output file
	var buf bytes.Buffer
	res, err := conv.ConvertFile(ctx, opts.path, &buf, convOpts)
	if err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
		return exitError
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: failed to write %s: %v\n", opts.output, err)
		return exitError
	}

	fmt.Fprintf(stderr, "wrote %d rows x %d columns from sheet %q to %s\n",
		res.Rows, res.Columns, res.Sheet, opts.output)
	return exitOK
}

func listSheets(path string, stdout, stderr io.Writer) int {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
		return exitError
	}
	defer file.Close()

	names, err := convert.SheetNames(file)
	if err != nil {
		fmt.Fprintf(stderr, "xlsx2csv: %v\n", err)
		return exitError
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return exitOK
}
