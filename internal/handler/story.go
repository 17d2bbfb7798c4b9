package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/story-cards/internal/apperror"
	"github.com/sakif/story-cards/internal/model"
	"github.com/sakif/story-cards/internal/service"
)

// StoryHandler serves stories and their interview transcripts.
type StoryHandler struct {
	service *service.StoryService
	logger  *slog.Logger
}

func NewStoryHandler(svc *service.StoryService, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{service: svc, logger: logger}
}

type storyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type messageRequest struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

// HandleList returns the caller's stories, most recently updated first.
//
// HTTP: GET /api/stories?limit=20&offset=0
func (h *StoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	stories, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

// HandleCreate starts a new story.
//
// HTTP: POST /api/stories
// REQUEST BODY: {"title": "Summers at the lake", "description": "..."}
func (h *StoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req storyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	story, err := h.service.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

// HandleGet returns one story.
//
// HTTP: GET /api/stories/{storyID}
func (h *StoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}

	story, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// HandleUpdate replaces a story's title and description.
//
// HTTP: PUT /api/stories/{storyID}
func (h *StoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req storyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	story, err := h.service.Update(r.Context(), userID, id, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// HandleDelete removes a story with its transcript and every card.
//
// HTTP: DELETE /api/stories/{storyID}
func (h *StoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMessages returns the transcript, oldest line first.
//
// HTTP: GET /api/stories/{storyID}/messages
func (h *StoryHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}

	msgs, err := h.service.Messages(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleAddMessage appends one transcript line.
//
// HTTP: POST /api/stories/{storyID}/messages
// REQUEST BODY: {"role": "user", "content": "I grew up by the sea."}
func (h *StoryHandler) HandleAddMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := idParam(r, "storyID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.service.AddMessage(r.Context(), userID, id, req.Role, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
