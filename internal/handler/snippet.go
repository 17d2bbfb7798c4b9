package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/service"
)

// SnippetHandler exposes the card gallery of a story.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGallery    → both collections plus lock counts, in one call
//   - HandleRegenerate → replace every unlocked active card with fresh ones
//   - HandleUpdate     → apply a sparse edit (only the fields that changed)
//   - HandleToggleLock → flip the lock on one card
//   - HandleArchive    → soft delete (the card moves to the archived list)
//   - HandleRestore    → move an archived card back to the active list
//
// Every route sits behind RequireAuth; ownership is the service's job.
type SnippetHandler struct {
	service *service.SnippetService
	logger  *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(svc *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{service: svc, logger: logger}
}

// HandleGallery returns the active and archived cards of a story.
//
// HTTP: GET /api/stories/{storyID}/snippets
//
// RESPONSE FORMAT:
//
//	{"active":[...], "archived":[...], "locked_count":1, "unlocked_count":4}
//
// Both lists are always arrays (never null), so a client can index them
// without a nil check.
func (h *SnippetHandler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	storyID, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}

	gallery, err := h.service.Gallery(r.Context(), userID, storyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gallery)
}

// HandleRegenerate asks the generator for a fresh set of cards.
//
// HTTP: POST /api/stories/{storyID}/snippets/generate
//
// A generator failure (no transcript, no API key, model error) is NOT an HTTP
// error: the response is 200 with {"success": false, "error": "..."} and
// nothing was archived. Only ownership and database failures produce a 4xx/5xx.
func (h *SnippetHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	storyID, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Regenerate(r.Context(), userID, storyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleUpdate applies a sparse edit.
//
// HTTP: PUT /api/snippets/{id}
// REQUEST BODY: {"title": "New title"}   (any subset of title/content/theme/phase)
//
// Absent keys are left alone. An empty object is a valid no-op that returns
// the card unchanged.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var update model.SnippetUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		h.logger.Warn("invalid snippet update", slog.Int64("snippetID", id), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	snippet, err := h.service.Update(r.Context(), userID, id, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleToggleLock flips the card's lock and returns the card.
//
// HTTP: POST /api/snippets/{id}/lock
func (h *SnippetHandler) HandleToggleLock(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.service.ToggleLock(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleArchive soft-deletes a card.
//
// HTTP: DELETE /api/snippets/{id}
//
// The row is kept with is_active = 0, so POST /restore can bring it back.
func (h *SnippetHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Archive(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestore moves an archived card back into the active list.
//
// HTTP: POST /api/snippets/{id}/restore
func (h *SnippetHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.service.Restore(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}
