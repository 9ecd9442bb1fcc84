package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/exporter"
	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
	api "github.com/phetchalermchai/it-inventory/pkg/contracts/api/v1"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// Load sources reported in metrics
const (
	SourceUpload = "upload"
	SourceSample = "sample"
	SourceFile   = "file"
)

// DatasetListener is notified after the served dataset has been replaced
type DatasetListener interface {
	OnDatasetReplaced(ctx context.Context, ds *inventory.Dataset)
}

// DatasetListenerFunc adapts a function to DatasetListener
type DatasetListenerFunc func(ctx context.Context, ds *inventory.Dataset)

// OnDatasetReplaced calls f
func (f DatasetListenerFunc) OnDatasetReplaced(ctx context.Context, ds *inventory.Dataset) {
	f(ctx, ds)
}

// Metadata describes the served dataset and the lines it dropped
type Metadata struct {
	domain.DatasetInfo
	Rejections      []inventory.Rejection         `json:"rejections"`
	RejectionCounts map[inventory.RejectReason]int `json:"rejection_counts"`
}

// InventoryService serves the current inventory dataset
type InventoryService struct {
	parser   *inventory.Parser
	auditor  *inventory.Auditor
	exporter *exporter.InventoryExporter
	current  atomic.Pointer[inventory.Dataset]

	listenersMu sync.RWMutex
	listeners   []DatasetListener

	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewInventoryService creates a service with no dataset loaded
func NewInventoryService(parser *inventory.Parser, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = inventory.NewParser(logger, inventory.DefaultParserConfig())
	}
	return &InventoryService{
		parser:   parser,
		auditor:  inventory.NewAuditor(),
		exporter: exporter.NewInventoryExporter(logger),
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   infrastructure.WithComponent(logger, "inventory_service"),
	}
}

// WithTelemetry attaches a tracer and business metrics. Either may be nil.
func (s *InventoryService) WithTelemetry(tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) *InventoryService {
	if tracer != nil {
		s.tracer = tracer
	}
	s.metrics = metrics
	return s
}

// Subscribe registers a listener for dataset replacements
func (s *InventoryService) Subscribe(l DatasetListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// ParserConfig returns the configuration uploads are parsed with
func (s *InventoryService) ParserConfig() inventory.ParserConfig {
	return s.parser.Config()
}

// Current returns the served dataset
func (s *InventoryService) Current(ctx context.Context) (*inventory.Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// Metadata returns the description of the served dataset
func (s *InventoryService) Metadata(ctx context.Context) (Metadata, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return Metadata{}, err
	}

	counts := ds.RejectionCounts()
	rejections := ds.Rejections
	if rejections == nil {
		rejections = []inventory.Rejection{}
	}
	return Metadata{
		DatasetInfo:     ds.Info(),
		Rejections:      rejections,
		RejectionCounts: counts,
	}, nil
}

// Load parses a document read from r and, on success, makes it the served
// dataset. On any error the previous dataset stays current.
func (s *InventoryService) Load(ctx context.Context, name string, r io.Reader) (*inventory.Dataset, error) {
	return s.load(ctx, SourceUpload, name, func(ctx context.Context) (*inventory.Dataset, error) {
		return s.parser.ParseReader(ctx, name, r)
	})
}

// LoadFile parses the document at path and serves it
func (s *InventoryService) LoadFile(ctx context.Context, path string) (*inventory.Dataset, error) {
	return s.load(ctx, SourceFile, path, func(ctx context.Context) (*inventory.Dataset, error) {
		return s.parser.ParseFile(ctx, path)
	})
}

// LoadSample serves the built-in sample dataset
func (s *InventoryService) LoadSample(ctx context.Context) (*inventory.Dataset, error) {
	return s.load(ctx, SourceSample, inventory.SampleSource, func(context.Context) (*inventory.Dataset, error) {
		return inventory.SampleDataset(), nil
	})
}

func (s *InventoryService) load(ctx context.Context, source, name string, parse func(context.Context) (*inventory.Dataset, error)) (*inventory.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.load",
		trace.WithAttributes(
			attribute.String("inventory.source", source),
			attribute.String("inventory.name", name),
		))
	defer span.End()
	// Startup and watcher reloads run outside any request
	ctx = infrastructure.EnsureTraceID(ctx)

	start := time.Now()
	ds, err := parse(ctx)
	duration := time.Since(start)

	if err != nil {
		outcome := loadOutcome(err)
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordDatasetLoad(ctx, s.metrics, infrastructure.DatasetLoad{
			Source:   source,
			Outcome:  outcome,
			Duration: duration,
		})
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "Dataset load rejected, keeping previous dataset",
			slog.String("source", source),
			slog.String("name", name),
			slog.String("outcome", outcome))
		return nil, err
	}

	previous := s.current.Swap(ds)
	infrastructure.AddSpanEvent(ctx, "dataset.replaced",
		attribute.String("inventory.dataset_id", ds.ID),
		attribute.String("inventory.checksum", ds.Checksum))

	rejections := make(map[string]int)
	for reason, n := range ds.RejectionCounts() {
		rejections[string(reason)] = n
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, infrastructure.DatasetLoad{
		Source:     source,
		Outcome:    "success",
		Duration:   duration,
		Records:    ds.Len(),
		Rejections: rejections,
	})
	span.SetAttributes(
		attribute.String("inventory.dataset_id", ds.ID),
		attribute.Int("inventory.records", ds.Len()),
		attribute.Int("inventory.rejected", len(ds.Rejections)),
	)

	attrs := []any{
		slog.String("source", source),
		slog.String("dataset_id", ds.ID),
		slog.Int("records", ds.Len()),
		slog.Int("rejected", len(ds.Rejections)),
		slog.Duration("duration", duration),
	}
	if previous != nil {
		attrs = append(attrs, slog.String("previous_dataset_id", previous.ID))
	}
	s.logger.InfoContext(ctx, "Dataset replaced", attrs...)

	s.notify(ctx, ds)
	return ds, nil
}

func (s *InventoryService) notify(ctx context.Context, ds *inventory.Dataset) {
	s.listenersMu.RLock()
	listeners := make([]DatasetListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l.OnDatasetReplaced(ctx, ds)
	}
}

// loadOutcome classifies a load error for metrics
func loadOutcome(err error) string {
	switch {
	case errors.Is(err, inventory.ErrParseEmpty):
		return "empty"
	case errors.Is(err, inventory.ErrUnsupportedFormat):
		return "unsupported"
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrTypePayloadTooLarge {
		return "too_large"
	}
	return "error"
}

// Records returns the served records whose department matches query
func (s *InventoryService) Records(ctx context.Context, query string) ([]domain.InventoryRecord, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.FilterByDepartment(ds.Records, query), nil
}

// Summary aggregates the records matching query
func (s *InventoryService) Summary(ctx context.Context, query string) (domain.Report, error) {
	records, err := s.Records(ctx, query)
	if err != nil {
		return domain.Report{}, err
	}
	return inventory.Summarize(records), nil
}

// Departments projects the records matching query to department views
func (s *InventoryService) Departments(ctx context.Context, query string) ([]domain.DepartmentView, error) {
	records, err := s.Records(ctx, query)
	if err != nil {
		return nil, err
	}
	return inventory.Departments(records), nil
}

// Audit checks the served records for internal consistency
func (s *InventoryService) Audit(ctx context.Context) ([]inventory.Finding, error) {
	ds, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	findings := s.auditor.Audit(ds.Records)

	byKind := make(map[string]int)
	for _, f := range findings {
		byKind[string(f.Kind)]++
	}
	infrastructure.RecordAuditFindings(ctx, s.metrics, byKind)

	s.logger.InfoContext(ctx, "Dataset audited",
		slog.String("dataset_id", ds.ID),
		slog.Int("findings", len(findings)))
	return findings, nil
}

// Export writes the records matching q.Q, or their summary, to w
func (s *InventoryService) Export(ctx context.Context, w io.Writer, q api.ExportQuery) error {
	q.Normalize()

	records, err := s.Records(ctx, q.Q)
	if err != nil {
		return err
	}

	switch {
	case q.Kind == api.ExportSummary && q.Format == api.FormatJSON:
		err = s.exporter.WriteSummaryJSON(w, inventory.Summarize(records))
	case q.Kind == api.ExportSummary:
		err = s.exporter.WriteSummary(w, inventory.Summarize(records), true)
	case q.Format == api.FormatJSON:
		err = writeJSON(w, records)
	default:
		err = s.exporter.WriteRecords(w, records, true)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to write export", err)
	}

	infrastructure.RecordExport(ctx, s.metrics, q.Kind+"_"+q.Format)
	return nil
}
