package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"itoparty/internal/service"
	"itoparty/internal/transport/rest/middleware"
)

// GameHandler handles game lifecycle and read endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())

	result, err := h.gameSvc.Create(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// EnterRequest is the request body for entering a game.
type EnterRequest struct {
	Password string `json:"password"`
}

// Enter handles POST /v1/games/enter
func (h *GameHandler) Enter(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())

	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gameID, err := h.gameSvc.Enter(r.Context(), callerID, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"gameId": gameID})
}

// Start handles POST /v1/games/{gameId}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.Start(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// End handles POST /v1/games/{gameId}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.End(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// Reset handles POST /v1/games/{gameId}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.Reset(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Exit handles POST /v1/games/{gameId}/exit
func (h *GameHandler) Exit(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.Exit(r.Context(), callerID, gameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exited"})
}

// Init handles POST /v1/player/init
func (h *GameHandler) Init(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())

	gameID, err := h.gameSvc.InitPlayer(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := map[string]interface{}{"gameId": nil}
	if gameID != "" {
		resp["gameId"] = gameID
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetConfig handles GET /v1/games/{gameId}/config
func (h *GameHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	view, err := h.gameSvc.GetConfig(r.Context(), callerID, gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetInfo handles GET /v1/games/{gameId}/info
func (h *GameHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	info, err := h.gameSvc.GetInfo(r.Context(), callerID, gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetValue handles GET /v1/games/{gameId}/value
func (h *GameHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetPlayerID(r.Context())
	gameID := mux.Vars(r)["gameId"]

	value, err := h.gameSvc.GetValue(r.Context(), callerID, gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"gameId": gameID, "value": value})
}
