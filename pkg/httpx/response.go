package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorBody is the shape of every JSON error: {"error": "..."} plus, for
// rejected input, per-field messages keyed by JSON field name.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON marshals v and writes it with status. v is encoded before anything is
// written, so a value that cannot be encoded produces a bare 500 instead of a
// truncated body under a success status.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "response encoding failed", http.StatusInternalServerError)
		return
	}
	body = append(body, '\n')

	h := w.Header()
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// JSONFieldErrors writes {"error": message, "fields": fields}.
func JSONFieldErrors(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, ErrorBody{Error: message, Fields: fields})
}

// SafeError is the client-facing message for err. Production hides the
// detail of 5xx errors behind the status text.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
