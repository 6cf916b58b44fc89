package handler

import (
	"net/http"
	"time"

	"itoparty/internal/service"
)

// CleanupHandler exposes the sweeper to the external scheduler. The trigger
// carries no per-call identity.
type CleanupHandler struct {
	cleanupSvc *service.CleanupService
}

// NewCleanupHandler creates a new cleanup handler.
func NewCleanupHandler(cleanupSvc *service.CleanupService) *CleanupHandler {
	return &CleanupHandler{cleanupSvc: cleanupSvc}
}

// Sweep handles POST /internal/cleanup
func (h *CleanupHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.cleanupSvc.Sweep(r.Context(), time.Now().UnixMilli())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
