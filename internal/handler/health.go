// Package handler contains the HTTP request handlers of the story-cards API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, an http.HandlerFunc: a function with the right signature.
// Chi's router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (URL params, query, JSON body)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers do NOT contain business logic: validation, ownership and the
// regenerate rules all live in internal/service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sqlite.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the server and its database are up.
type HealthHandler struct {
	db             Pinger
	generatorModel string // "" when card generation is not configured
	logger         *slog.Logger
}

func NewHealthHandler(db Pinger, generatorModel string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, generatorModel: generatorModel, logger: logger}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Generator string `json:"generator"`
}

// HandleHealth pings the database with a short timeout.
//
// HTTP: GET /health
//
// 200 when the database answers, 503 otherwise. The generator is reported but
// never fails the check: the gallery still works without it.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Generator: "disabled"}
	if h.generatorModel != "" {
		resp.Generator = h.generatorModel
	}

	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check: database ping failed", slog.String("error", err.Error()))
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
