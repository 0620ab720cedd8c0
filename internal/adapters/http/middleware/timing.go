package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 300 * time.Millisecond

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// RequestObserver receives one observation per completed request.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, d time.Duration)
}

// TimingConfig configures the Timing middleware.
type TimingConfig struct {
	Collector     *perf.Collector // optional
	Metrics       RequestObserver // optional
	SlowThreshold time.Duration   // zero means DefaultSlowRequest
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// routeSlot is filled by RecordPattern once the mux has matched the request.
type routeSlot struct{ pattern string }

type routeSlotKey struct{}

// RecordPattern wraps the mux so Timing can label requests by route pattern
// instead of raw path. It must be the innermost wrapper around the mux.
func RecordPattern(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if slot, ok := r.Context().Value(routeSlotKey{}).(*routeSlot); ok {
			slot.pattern = r.Pattern
		}
	})
}

// Timing returns middleware that assigns a request id and logs request duration.
// Requests to /static/ are excluded.
// Normal requests log at DEBUG; slow requests (above threshold) log at WARN.
func Timing(cfg TimingConfig) func(http.Handler) http.Handler {
	threshold := cfg.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	thresholdMs := float64(threshold.Microseconds()) / 1000.0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestID(r)
			w.Header().Set(RequestIDHeader, reqID)
			slot := &routeSlot{}
			ctx := context.WithValue(academyapi.WithRequestID(r.Context(), reqID), routeSlotKey{}, slot)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0
				route := routeLabel(slot.pattern, r.Method, path)

				if durationMs >= thresholdMs {
					slog.Warn("slow_request",
						"request_id", reqID,
						"method", r.Method,
						"path", path,
						"route", route,
						"status", sw.status,
						"duration_ms", durationMs,
					)
				} else {
					slog.Debug("request",
						"request_id", reqID,
						"method", r.Method,
						"path", path,
						"status", sw.status,
						"duration_ms", durationMs,
					)
				}

				if cfg.Collector != nil {
					cfg.Collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + path,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}
				if cfg.Metrics != nil {
					cfg.Metrics.ObserveRequest(route, r.Method, sw.status, elapsed)
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))
		})
	}
}

// requestID reuses a well-formed inbound id, otherwise mints a UUID.
func requestID(r *http.Request) string {
	if in := r.Header.Get(RequestIDHeader); in != "" {
		if _, err := uuid.Parse(in); err == nil {
			return in
		}
	}
	return uuid.NewString()
}

// routeLabel keeps metric cardinality bounded: unmatched requests share one label.
func routeLabel(pattern, method, path string) string {
	if pattern == "" {
		return "unmatched"
	}
	// Patterns registered with a method already carry it.
	if strings.HasPrefix(pattern, method+" ") {
		return strings.TrimPrefix(pattern, method+" ")
	}
	return pattern
}
