package http

import (
	"net/http"

	"frontdesk-rental-backend/internal/service"
)

// LifecycleHandler exposes the status transitions of a rental.
type LifecycleHandler struct {
	lifecycle service.LifecycleService
}

func NewLifecycleHandler(lifecycle service.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

func (h *LifecycleHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req service.CheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "check-in")
		return
	}
	result, err := h.lifecycle.CheckIn(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "check-in")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *LifecycleHandler) MoveToActive(w http.ResponseWriter, r *http.Request) {
	var req service.MoveToActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "move to active")
		return
	}
	result, err := h.lifecycle.MoveToActive(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "move to active")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *LifecycleHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req service.ReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "return")
		return
	}
	result, err := h.lifecycle.Return(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "return")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *LifecycleHandler) ReportTrouble(w http.ResponseWriter, r *http.Request) {
	var req service.ReportTroubleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "trouble report")
		return
	}
	result, err := h.lifecycle.ReportTrouble(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "trouble report")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *LifecycleHandler) ResolveTrouble(w http.ResponseWriter, r *http.Request) {
	var req service.ResolveTroubleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "trouble resolution")
		return
	}
	result, err := h.lifecycle.ResolveTrouble(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "trouble resolution")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}
