package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"itoparty/internal/service"
	"itoparty/internal/transport/rest/middleware"
)

// PlayerHandler handles per-player state endpoints.
type PlayerHandler struct {
	playerSvc *service.PlayerService
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(playerSvc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc}
}

// NameRequest is the request body for updating the display name.
type NameRequest struct {
	Name string `json:"name"`
}

// UpdateName handles PUT /v1/games/{gameId}/name
func (h *PlayerHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playerSvc.UpdateName(r.Context(), callerID, gameID, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HintRequest is the request body for updating the hint.
type HintRequest struct {
	Hint string `json:"hint"`
}

// UpdateHint handles PUT /v1/games/{gameId}/hint
func (h *PlayerHandler) UpdateHint(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	var req HintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playerSvc.UpdateHint(r.Context(), callerID, gameID, req.Hint); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// AvatarRequest is the request body for updating the avatar.
type AvatarRequest struct {
	Avatar int `json:"avatar"`
}

// UpdateAvatar handles PUT /v1/games/{gameId}/avatar
func (h *PlayerHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	var req AvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playerSvc.UpdateAvatar(r.Context(), callerID, gameID, req.Avatar); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Submit handles POST /v1/games/{gameId}/submit
func (h *PlayerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.playerSvc.Submit(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// Withdraw handles POST /v1/games/{gameId}/withdraw
func (h *PlayerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.playerSvc.Withdraw(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

// Heartbeat handles POST /v1/games/{gameId}/heartbeat
func (h *PlayerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.playerSvc.Heartbeat(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
