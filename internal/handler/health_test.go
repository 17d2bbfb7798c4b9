package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name          string
		ping          error
		model         string
		wantStatus    int
		wantDatabase  string
		wantGenerator string
	}{
		{"healthy", nil, "gemini-2.5-flash", http.StatusOK, "ok", "gemini-2.5-flash"},
		{"no generator", nil, "", http.StatusOK, "ok", "disabled"},
		{"database down", errors.New("disk I/O error"), "", http.StatusServiceUnavailable, "unreachable", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := pingerFunc(func(context.Context) error { return tt.ping })
			h := NewHealthHandler(db, tt.model, slog.New(slog.NewTextHandler(io.Discard, nil)))
			rr := httptest.NewRecorder()

			h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantDatabase, body.Database)
			assert.Equal(t, tt.wantGenerator, body.Generator)
		})
	}
}

func TestHandleModelStatus(t *testing.T) {
	tests := []struct {
		name         string
		models       []string
		wantModels   []string
		wantFallback bool
	}{
		{"chain", []string{"gemini-2.5-flash", "gemini-2.0-flash"}, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, true},
		{"single model", []string{"gemini-2.5-pro"}, []string{"gemini-2.5-pro"}, false},
		{"disabled", nil, []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewModelStatusHandler(tt.models, "environment")
			rr := httptest.NewRecorder()

			h.HandleModelStatus(rr, httptest.NewRequest(http.MethodGet, "/api/model-status", nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			var body ModelStatusResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantModels, body.AvailableModels)
			assert.Equal(t, len(tt.wantModels), body.TotalModels)
			assert.Equal(t, tt.wantFallback, body.FallbackEnabled)
			assert.Equal(t, "environment", body.Source)
		})
	}
}
