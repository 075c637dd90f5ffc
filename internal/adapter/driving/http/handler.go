// Package httphandler is the HTTP driving adapter: it lowers each incoming
// request to the gateway's parsed tuple and writes the envelope back.
package httphandler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/lockfind/lockfind/internal/application"
)

// maxBodyBytes caps request bodies well above the gateway's own 1MB
// plaintext limit so oversized text still reaches the gateway's specific
// validation error.
const maxBodyBytes = 4 << 20

// Handler serves the gateway API over HTTP.
type Handler struct {
	gateway *application.Gateway
	logger  *slog.Logger
}

// NewHandler creates a Handler dispatching into gateway.
func NewHandler(gateway *application.Gateway, logger *slog.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

// NewServeMux creates an http.Handler with the API mounted and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// One entry point: authentication, rate limiting and routing all live
	// in the gateway, not the mux.
	mux.HandleFunc("/api/", h.Dispatch)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Dispatch forwards the request to the gateway and writes the envelope
// with the gateway's HTTP-equivalent status code.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("read request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	resp := h.gateway.Handle(r.Context(), application.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: headers,
		Body:    body,
	})

	writeJSON(w, resp.HTTPStatus, resp)
}
