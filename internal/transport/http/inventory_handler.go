package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/middleware"
	"github.com/phetchalermchai/it-inventory/internal/services"
	api "github.com/phetchalermchai/it-inventory/pkg/contracts/api/v1"
)

// UploadField is the multipart field carrying the inventory document
const UploadField = "file"

// multipart framing allowance on top of the document limit
const multipartOverhead = 64 << 10

// InventoryHandler serves the inventory dataset API
type InventoryHandler struct {
	service        InventoryService
	validator      Validator
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
	uploadLimiter  func(http.Handler) http.Handler
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service InventoryService, validator Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger, maxUploadBytes int64) *InventoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryHandler{
		service:        service,
		validator:      validator,
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("component", "inventory_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// WithUploadMiddleware wraps the dataset-replacing routes, e.g. with a rate limiter
func (h *InventoryHandler) WithUploadMiddleware(mw func(http.Handler) http.Handler) *InventoryHandler {
	h.uploadLimiter = mw
	return h
}

// Routes returns the inventory routes
func (h *InventoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetMetadata)
	r.Get("/records", h.GetRecords)
	r.Get("/summary", h.GetSummary)
	r.Get("/departments", h.GetDepartments)
	r.Get("/audit", h.GetAudit)
	r.Get("/export", h.Export)

	r.Group(func(r chi.Router) {
		if h.uploadLimiter != nil {
			r.Use(h.uploadLimiter)
		}
		r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
			Post("/upload", h.Upload)
		r.Post("/sample", h.RestoreSample)
	})

	return r
}

// GetMetadata handles GET /api/inventory
func (h *InventoryHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Metadata(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, envelope(meta, meta.Records))
}

// GetRecords handles GET /api/inventory/records?q=
func (h *InventoryHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	q, ok := h.recordsQuery(w, r)
	if !ok {
		return
	}

	records, err := h.service.Records(r.Context(), q.Q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, envelope(records, len(records)))
}

// GetSummary handles GET /api/inventory/summary?q=
func (h *InventoryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, ok := h.recordsQuery(w, r)
	if !ok {
		return
	}

	report, err := h.service.Summary(r.Context(), q.Q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, envelope(report, report.Records))
}

// GetDepartments handles GET /api/inventory/departments?q=
func (h *InventoryHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	q, ok := h.recordsQuery(w, r)
	if !ok {
		return
	}

	views, err := h.service.Departments(r.Context(), q.Q)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, envelope(views, len(views)))
}

// GetAudit handles GET /api/inventory/audit
func (h *InventoryHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	findings, err := h.service.Audit(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.JSON(w, r, envelope(findings, len(findings)))
}

// Export handles GET /api/inventory/export?q=&kind=&format=
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := api.ExportQuery{
		Q:      values.Get("q"),
		Kind:   values.Get("kind"),
		Format: values.Get("format"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	q.Normalize()

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, q); err != nil {
		h.handleError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if q.Format == api.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory-%s.%s"`, q.Kind, q.Format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("error", err.Error()))
	}
}

// Upload handles POST /api/inventory/upload. The document travels in the
// multipart field named by UploadField and replaces the served dataset.
func (h *InventoryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(UploadField, "multipart/form-data body required"))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(UploadField, "file field is required"))
			return
		}
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		if part.FormName() != UploadField {
			part.Close()
			continue
		}

		req := api.UploadRequest{Filename: filepath.Base(part.FileName())}
		if part.FileName() == "" {
			req.Filename = ""
		}
		if err := h.validator.ValidateStruct(req); err != nil {
			part.Close()
			h.errorHandler.HandleError(w, r, err)
			return
		}

		h.logger.InfoContext(ctx, "inventory upload received",
			slog.String("filename", req.Filename))

		ds, err := h.service.Load(ctx, req.Filename, part)
		part.Close()
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		info := ds.Info()
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, envelope(info, info.Records))
		return
	}
}

// RestoreSample handles POST /api/inventory/sample
func (h *InventoryHandler) RestoreSample(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.LoadSample(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	info := ds.Info()
	render.JSON(w, r, envelope(info, info.Records))
}

func (h *InventoryHandler) recordsQuery(w http.ResponseWriter, r *http.Request) (api.RecordsQuery, bool) {
	q := api.RecordsQuery{Q: r.URL.Query().Get("q")}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

// handleError maps service errors onto API errors
func (h *InventoryHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoDataset) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

func envelope(data interface{}, count int) map[string]interface{} {
	return map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	}
}
