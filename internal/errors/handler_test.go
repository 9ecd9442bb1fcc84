package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetchalermchai/it-inventory/internal/shared/testutil"
)

var errEmptySentinel = errors.New("no valid inventory rows")

func TestNewErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{name: "create handler with stack traces", includeStack: true},
		{name: "create handler without stack traces", includeStack: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, tt.includeStack)

			assert.NotNil(t, handler)
			assert.Equal(t, tt.includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandler_ErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    map[string]interface{}
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unsupported format",
			err:        NewUnsupportedFormatError("xlsx documents are not supported", errors.New("unsupported")).WithContext("format", "xlsx"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   TypeUnsupportedFormat,
			wantExt:    map[string]interface{}{"format": "xlsx", "error_code": "UNSUPPORTED_FORMAT"},
		},
		{
			name:       "parse empty wrapped by caller",
			err:        fmt.Errorf("load: %w", NewParsingError("no valid rows", errEmptySentinel).WithContext("rejected", 3)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeParseEmpty,
			wantExt:    map[string]interface{}{"rejected": 3},
		},
		{
			name:       "payload too large app error",
			err:        NewPayloadTooLargeError("inventory document exceeds 8 bytes"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "max bytes reader error inside storage error",
			err:        NewStorageError("failed to read", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "storage error is internal",
			err:        NewStorageError("disk on fire", errors.New("io")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "api error",
			err:        ErrDatasetNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotFound,
			wantExt:    map[string]interface{}{"error_code": "DATASET_NOT_FOUND"},
		},
		{
			name:       "validation api error",
			err:        ErrValidation("q", "too long"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "plain not found",
			err:        errors.New("sheet not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)
			req := httptest.NewRequest(http.MethodPost, "/api/inventory/upload", nil)

			problem := handler.ErrorToProblem(tt.err, req)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/inventory/upload", problem.Instance)
			for k, v := range tt.wantExt {
				assert.Equal(t, v, problem.Extensions[k], k)
			}
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	errHandler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/upload", nil)

	errHandler.HandleError(w, req, NewParsingError("no valid rows", errEmptySentinel).WithContext("lines", 4))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeParseEmpty, body["type"])
	assert.Equal(t, "No Valid Rows", body["title"])
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, float64(4), body["lines"])
	assert.Contains(t, body, "trace_id")

	testutil.AssertLogContains(t, handler, slog.LevelError, "request failed")
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	errHandler := NewErrorHandler(logger, false)
	w := httptest.NewRecorder()

	errHandler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, handler.Count())
	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_Middleware_RecoversPanics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errHandler := NewErrorHandler(logger, true)

	h := errHandler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "kaboom", body["panic"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errHandler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	errHandler.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	errHandler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/inventory", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "DELETE")
}
