package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimiter applies a token bucket to every request it sees
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second with burst
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Handler implements rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		rl.logger.WarnContext(ctx, "rate limit exceeded",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		retry := 1
		if limit := float64(rl.limiter.Limit()); limit > 0 && limit < 1 {
			retry = int(1/limit) + 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		WriteProblem(w, r, http.StatusTooManyRequests,
			"Rate limit exceeded. Please retry after "+strconv.Itoa(retry)+" seconds")
	})
}
