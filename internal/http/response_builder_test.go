package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gagyebu/internal/core"
	"gagyebu/internal/services"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Body(map[string]int{"income": 350000}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	if strings.TrimSpace(w.Body.String()) != `{"income":350000}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 || w.Header().Get("Content-Type") != "" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequestsError().Write(w)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Fatalf("unexpected response %d %v", w.Code, w.Header())
	}
}

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad parameter", fmt.Errorf("%w: year", ErrInvalidParam), http.StatusBadRequest},
		{"bad month", core.ErrInvalidMonth, http.StatusBadRequest},
		{"bad day", fmt.Errorf("wrapped: %w", core.ErrInvalidDay), http.StatusBadRequest},
		{"bad date", core.ErrInvalidDate, http.StatusBadRequest},
		{"malformed amount", core.ErrMalformedAmount, http.StatusUnprocessableEntity},
		{"unknown category", core.ErrUnknownCategory, http.StatusUnprocessableEntity},
		{"invalid entry type", core.ErrInvalidEntryType, http.StatusUnprocessableEntity},
		{"empty report", core.ErrEmptyReport, http.StatusUnprocessableEntity},
		{"no queue", services.ErrNoQueue, http.StatusServiceUnavailable},
		{"storage failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromDomain(tt.err).Write(w)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(w.Body.String(), "disk") {
				t.Fatal("internal error text must not leak")
			}
		})
	}
}
