package httpapi

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nexusai/internal/logging"
	"nexusai/internal/ratelimit"
	"nexusai/internal/utils"
)

// requestIDMiddleware stamps every response with an X-Request-ID,
// keeping one supplied by the caller.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware throttles generation endpoints per caller
// address.
func rateLimitMiddleware(limiter ratelimit.Limiter, logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)
			if !limiter.Allow(r.Context(), key) {
				logger.Warn("request throttled", "caller", key, "path", r.URL.Path)
				utils.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// accessLogMiddleware records each completed request to the access log.
func accessLogMiddleware(accessLog *logging.AccessLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			accessLog.Log(logging.AccessEntry{
				RequestID:  rec.Header().Get("X-Request-ID"),
				Method:     r.Method,
				Path:       r.URL.Path,
				RemoteAddr: r.RemoteAddr,
				Status:     rec.status,
				DurationMS: time.Since(start).Milliseconds(),
			})
		})
	}
}

func callerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
