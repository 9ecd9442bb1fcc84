package inventory

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lineEndings normalizes CRLF and lone CR line breaks to LF.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ParserConfig configures a Parser.
type ParserConfig struct {
	HeaderRows     int
	Delimiter      rune
	Schema         Schema
	MaxBytes       int64
	LegacyEncoding string
}

// DefaultParserConfig returns the configuration for the standard report layout.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		HeaderRows: 1,
		Delimiter:  DefaultDelimiter,
		Schema:     DefaultSchema(),
		MaxBytes:   10 << 20,
	}
}

// Parser turns inventory report documents into Datasets.
type Parser struct {
	config  ParserConfig
	legacy  encoding.Encoding
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger, config ParserConfig) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Delimiter == 0 {
		config.Delimiter = DefaultDelimiter
	}
	if config.HeaderRows < 0 {
		config.HeaderRows = 0
	}
	if len(config.Schema.Columns) == 0 {
		config.Schema = DefaultSchema()
	}

	p := &Parser{
		config:  config,
		logger:  logger.With(slog.String("component", "inventory_parser")),
		nowFunc: time.Now,
	}

	if config.LegacyEncoding != "" {
		enc, err := LookupEncoding(config.LegacyEncoding)
		if err != nil {
			p.logger.Warn("ignoring legacy encoding",
				slog.String("encoding", config.LegacyEncoding),
				slog.String("error", err.Error()))
		}
		p.legacy = enc
	}
	return p
}

// LookupEncoding resolves the name of a supported legacy code page.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows-874", "cp874", "tis-620":
		return charmap.Windows874, nil
	}
	return nil, fmt.Errorf("unsupported legacy encoding %q", name)
}

// Config returns the parser configuration.
func (p *Parser) Config() ParserConfig {
	return p.config
}

// ParseFile parses the document at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Dataset, error) {
	if err := CheckFormat(path, nil); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open inventory file", err).
			WithContext("path", path)
	}
	defer file.Close()

	return p.ParseReader(ctx, filepath.Base(path), file)
}

// ParseReader reads a whole document from r and parses it. The name is used
// for format detection and as the dataset source; it may be empty.
func (p *Parser) ParseReader(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	if err := CheckFormat(name, nil); err != nil {
		return nil, err
	}

	if p.config.MaxBytes > 0 {
		r = io.LimitReader(r, p.config.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read inventory document", err).
			WithContext("source", name)
	}
	if p.config.MaxBytes > 0 && int64(len(data)) > p.config.MaxBytes {
		return nil, apperrors.NewPayloadTooLargeError(
			fmt.Sprintf("inventory document exceeds %d bytes", p.config.MaxBytes)).
			WithContext("source", name)
	}

	head := data
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	if err := CheckFormat(name, head); err != nil {
		return nil, err
	}

	return p.Parse(ctx, name, p.decodeText(ctx, name, data))
}

// decodeText strips a UTF-8 byte order mark and transcodes legacy input.
func (p *Parser) decodeText(ctx context.Context, name string, data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	if p.legacy != nil {
		decoded, err := p.legacy.NewDecoder().Bytes(data)
		if err == nil {
			p.logger.InfoContext(ctx, "transcoded legacy document",
				slog.String("source", name),
				slog.String("encoding", p.config.LegacyEncoding))
			return string(decoded)
		}
		p.logger.WarnContext(ctx, "legacy transcoding failed",
			slog.String("source", name),
			slog.String("error", err.Error()))
	}

	p.logger.WarnContext(ctx, "document is not valid UTF-8, names may be garbled",
		slog.String("source", name))
	return string(data)
}

// Parse parses document text. Header lines are skipped, every other line is
// split and mapped, and rejected lines are dropped. ErrParseEmpty is returned
// when no line produced a record.
func (p *Parser) Parse(ctx context.Context, source, text string) (*Dataset, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimSuffix(lineEndings.Replace(text), "\n")
	sum := blake2b.Sum256([]byte(text))

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}

	header := min(p.config.HeaderRows, len(lines))
	dataLines := lines[header:]

	ds := &Dataset{
		ID:       uuid.New().String(),
		Source:   source,
		Checksum: hex.EncodeToString(sum[:]),
		Records:  make([]domain.InventoryRecord, 0, len(dataLines)),
		Lines:    len(dataLines),
		ParsedAt: p.nowFunc(),
	}

	for i, line := range dataLines {
		result := p.config.Schema.MapRecord(SplitRow(line, p.config.Delimiter), i)
		if !result.OK() {
			ds.Rejections = append(ds.Rejections, Rejection{Line: header + i + 1, Reason: result.Reason})
			p.logger.DebugContext(ctx, "row rejected",
				slog.String("source", source),
				slog.Int("line", header+i+1),
				slog.String("reason", string(result.Reason)))
			continue
		}
		ds.Records = append(ds.Records, result.Record)
	}

	if len(ds.Records) == 0 {
		p.logger.WarnContext(ctx, "document produced no records",
			slog.String("source", source),
			slog.Int("lines", ds.Lines),
			slog.Int("rejected", len(ds.Rejections)))
		return nil, apperrors.NewParsingError("no valid rows found in inventory document", ErrParseEmpty).
			WithContext("source", source).
			WithContext("lines", ds.Lines).
			WithContext("rejected", len(ds.Rejections))
	}

	p.logger.InfoContext(ctx, "inventory parsed",
		slog.String("dataset_id", ds.ID),
		slog.String("source", source),
		slog.Int("records", len(ds.Records)),
		slog.Int("rejected", len(ds.Rejections)),
		slog.Int("lines", ds.Lines))

	return ds, nil
}
