package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lockfind/lockfind/internal/application"
)

// writeJSON marshals v to JSON and writes it to the response with the
// given status code. If marshaling fails, a 500 envelope is written
// instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a failure envelope produced outside the gateway (body
// read failures, recovered panics).
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, application.Response{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UnixMilli(),
	})
}
