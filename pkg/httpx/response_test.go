package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ghuser/crochestock/pkg/httpx"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{
			name:   "created item",
			write:  func(w http.ResponseWriter) { httpx.JSON(w, http.StatusCreated, map[string]any{"id": 3, "name": "Merino"}) },
			status: http.StatusCreated,
			body:   `{"id":3,"name":"Merino"}` + "\n",
		},
		{
			name:   "error",
			write:  func(w http.ResponseWriter) { httpx.JSONError(w, http.StatusNotFound, "Item not found") },
			status: http.StatusNotFound,
			body:   `{"error":"Item not found"}` + "\n",
		},
		{
			name: "field errors",
			write: func(w http.ResponseWriter) {
				httpx.JSONFieldErrors(w, http.StatusBadRequest, "Validation failed", map[string]string{"name": "This field is required"})
			},
			status: http.StatusBadRequest,
			body:   `{"error":"Validation failed","fields":{"name":"This field is required"}}` + "\n",
		},
		{
			name:   "null",
			write:  func(w http.ResponseWriter) { httpx.JSON(w, http.StatusOK, nil) },
			status: http.StatusOK,
			body:   "null\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.status {
				t.Errorf("status: got %d, want %d", w.Code, tt.status)
			}
			if got := w.Body.String(); got != tt.body {
				t.Errorf("body: got %q, want %q", got, tt.body)
			}
			h := w.Header()
			if ct := h.Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Content-Type: %q", ct)
			}
			if cl := h.Get("Content-Length"); cl != strconv.Itoa(len(tt.body)) {
				t.Errorf("Content-Length: got %s, want %d", cl, len(tt.body))
			}
			if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("Cache-Control") != "no-store" {
				t.Errorf("missing hardening headers: %v", h)
			}
		})
	}
}

func TestJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]any{"ch": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "application/json; charset=utf-8" {
		t.Errorf("error response must not claim JSON, got %q", ct)
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New(`pq: relation "croche_items" does not exist`)

	tests := []struct {
		name       string
		status     int
		production bool
		want       string
	}{
		{"production hides 500", http.StatusInternalServerError, true, "Internal Server Error"},
		{"production hides 503", http.StatusServiceUnavailable, true, "Service Unavailable"},
		{"development shows 500", http.StatusInternalServerError, false, err.Error()},
		{"production shows 404", http.StatusNotFound, true, err.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := httpx.SafeError(err, tt.status, tt.production); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
