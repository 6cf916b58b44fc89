package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"itoparty/internal/service"
	"itoparty/internal/transport/rest/middleware"
)

// AdminHandler handles admin-only game endpoints.
type AdminHandler struct {
	gameSvc *service.GameService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(gameSvc *service.GameService) *AdminHandler {
	return &AdminHandler{gameSvc: gameSvc}
}

// TopicRequest is the request body for updating the topic.
type TopicRequest struct {
	Topic string `json:"topic"`
}

// UpdateTopic handles PUT /v1/games/{gameId}/topic
func (h *AdminHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	var req TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.UpdateTopic(r.Context(), callerID, gameID, req.Topic); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// KickRequest is the request body for kicking a player.
type KickRequest struct {
	PlayerID string `json:"playerId"`
}

// Kick handles POST /v1/games/{gameId}/kick
func (h *AdminHandler) Kick(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	var req KickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	if err := h.gameSvc.KickPlayer(r.Context(), callerID, gameID, req.PlayerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "kicked"})
}
