package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/phetchalermchai/it-inventory/internal/errors"
)

// statusProblems maps the statuses middleware answers on its own to problem types
var statusProblems = map[int]string{
	http.StatusBadRequest:            apierrors.TypeValidation,
	http.StatusNotFound:              apierrors.TypeNotFound,
	http.StatusRequestTimeout:        apierrors.TypeTimeout,
	http.StatusRequestEntityTooLarge: apierrors.TypePayloadTooLarge,
	http.StatusUnsupportedMediaType:  apierrors.TypeUnsupportedFormat,
	http.StatusTooManyRequests:       apierrors.TypeRateLimit,
	http.StatusServiceUnavailable:    apierrors.TypeServiceDown,
}

// ProblemFromStatus builds the problem document for status. Statuses without a
// dedicated type fall back to the internal error type.
func ProblemFromStatus(r *http.Request, status int, detail string) *apierrors.ProblemDetails {
	problemType, ok := statusProblems[status]
	if !ok {
		problemType = apierrors.TypeInternal
	}

	problem := apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
	if id := GetRequestID(r.Context()); id != "" {
		problem.WithExtension("trace_id", id)
	}
	return problem
}

// WriteProblem writes an application/problem+json response for status
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ProblemFromStatus(r, status, detail))
}
