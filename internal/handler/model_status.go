package handler

import "net/http"

// ModelStatusHandler reports the Gemini fallback chain.
type ModelStatusHandler struct {
	models []string // nil when card generation is not configured
	source string
}

func NewModelStatusHandler(models []string, source string) *ModelStatusHandler {
	return &ModelStatusHandler{models: models, source: source}
}

// ModelStatusResponse is the body of GET /api/model-status.
type ModelStatusResponse struct {
	AvailableModels []string `json:"available_models"`
	TotalModels     int      `json:"total_models"`
	FallbackEnabled bool     `json:"fallback_enabled"`
	Source          string   `json:"source"` // "default", "file" or "environment"
}

// HandleModelStatus lists the models regeneration tries, in order.
//
// HTTP: GET /api/model-status
func (h *ModelStatusHandler) HandleModelStatus(w http.ResponseWriter, r *http.Request) {
	models := h.models
	if models == nil {
		models = []string{} // encode as [] rather than null
	}
	writeJSON(w, http.StatusOK, ModelStatusResponse{
		AvailableModels: models,
		TotalModels:     len(models),
		FallbackEnabled: len(models) > 1,
		Source:          h.source,
	})
}
