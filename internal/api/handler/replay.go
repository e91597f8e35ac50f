package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tsumogiri/riichi-client/internal/api/apierr"
	"github.com/tsumogiri/riichi-client/internal/api/response"
	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/services/replay"
)

// ReplayHandler handles replay inspection endpoints
type ReplayHandler struct {
	replayService *replay.Service
}

// NewReplayHandler creates a new replay handler
func NewReplayHandler(replayService *replay.Service) *ReplayHandler {
	return &ReplayHandler{
		replayService: replayService,
	}
}

// List handles GET /api/v1/replays
func (h *ReplayHandler) List(w http.ResponseWriter, r *http.Request) {
	metas, err := h.replayService.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := response.ReplayList{Replays: make([]response.Replay, 0, len(metas))}
	for _, meta := range metas {
		out.Replays = append(out.Replays, response.ReplayFromModel(meta))
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/replays/{id}
func (h *ReplayHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ReplayID(mux.Vars(r)["id"])

	meta, err := h.replayService.Get(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReplayFromModel(meta))
}

// Lines handles GET /api/v1/replays/{id}/lines
func (h *ReplayHandler) Lines(w http.ResponseWriter, r *http.Request) {
	id := model.ReplayID(mux.Vars(r)["id"])

	lines, err := h.replayService.Lines(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := response.ReplayLines{Lines: make([]response.ReplayLine, 0, len(lines))}
	for _, line := range lines {
		out.Lines = append(out.Lines, response.ReplayLineFromModel(line))
	}
	response.JSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/v1/replays/{id}
func (h *ReplayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ReplayID(mux.Vars(r)["id"])

	// Deleting a missing replay should still 404 rather than silently succeed
	if _, err := h.replayService.Get(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if err := h.replayService.Delete(r.Context(), id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
