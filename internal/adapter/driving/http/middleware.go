package httphandler

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// responseRecorder wraps http.ResponseWriter to capture the status code,
// the body size, and whether the response has started. Only the first
// WriteHeader call sets the recorded status.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	started bool
}

func (rec *responseRecorder) WriteHeader(status int) {
	if !rec.started {
		rec.status = status
		rec.started = true
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	rec.started = true
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += n
	return n, err
}

// loggingMiddleware emits one log line per request with status, response
// size, and timing.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware turns a handler panic into a 500 envelope. The
// envelope is written only while the response has not started; a panic
// after the first byte can no longer be repaired, so the connection is
// left to the server to tear down.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, _ := w.(*responseRecorder)

		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				if rec == nil || !rec.started {
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}
		}()

		next.ServeHTTP(w, r)
	})
}
