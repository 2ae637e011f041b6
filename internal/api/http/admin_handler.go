package http

import (
	"net/http"

	"frontdesk-rental-backend/internal/service"
)

type AdminHandler struct {
	history service.HistoryService
}

func NewAdminHandler(history service.HistoryService) *AdminHandler {
	return &AdminHandler{history: history}
}

// Floor handles GET /admin/floor.
func (h *AdminHandler) Floor(w http.ResponseWriter, r *http.Request) {
	board, err := h.history.FloorBoard(r.Context())
	if err != nil {
		writeError(w, r, err, "floor board")
		return
	}
	writeSuccess(w, http.StatusOK, board)
}

// Summary handles GET /admin/summary: rental counts per status.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.history.StatusSummary(r.Context())
	if err != nil {
		writeError(w, r, err, "status summary")
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeSuccess(w, http.StatusOK, map[string]any{"counts": counts, "total": total})
}
