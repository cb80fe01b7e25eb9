package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/footmetricx/pitchctl/pkg/metrics"
)

// instrument records request count, latency and failures for endpoint.
// Failures are labelled with the error code the handler wrote.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		ms := float64(time.Since(start).Microseconds()) / 1000
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, rec.errorType())
		}
	}
}

// statusRecorder captures the status and error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	errCode string
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) errorType() string {
	if rec.errCode != "" {
		return rec.errCode
	}
	switch {
	case rec.status >= http.StatusInternalServerError:
		return "server_error"
	case rec.status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "client_error"
	}
}

// noteErrorCode tags w with code when it is being instrumented.
func noteErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.errCode = code
	}
}
