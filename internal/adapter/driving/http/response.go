package httphandler

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   string            `json:"time"`
}

// errorResponse is the body of every JSON error.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before touching the response so an encoding failure can
// still produce a clean 500. API responses are never cached.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"internal server error"}` + "\n")
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
