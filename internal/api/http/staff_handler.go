package http

import (
	"net/http"

	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/service"
)

type StaffHandler struct {
	staff service.StaffService
}

func NewStaffHandler(staff service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

type staffRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type staffReorderRequest struct {
	OrderedStaff []domain.Staff `json:"orderedStaff"`
}

type staffResponse struct {
	StaffID string `json:"staffId"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.staff.List(r.Context())
	if err != nil {
		writeError(w, r, err, "staff listing")
		return
	}
	if staff == nil {
		staff = []domain.Staff{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"staff": staff, "total": len(staff)})
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "staff creation")
		return
	}
	staff, err := h.staff.Add(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err, "staff creation")
		return
	}
	writeSuccess(w, http.StatusCreated, staffResponse{
		StaffID: staff.ID,
		Name:    staff.Name,
		Message: "Staff member added successfully",
	})
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "staff update")
		return
	}
	if err := h.staff.Rename(r.Context(), req.ID, req.Name); err != nil {
		writeError(w, r, err, "staff update")
		return
	}
	writeSuccess(w, http.StatusOK, staffResponse{
		StaffID: req.ID,
		Name:    req.Name,
		Message: "Staff member updated successfully",
	})
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.staff.Remove(r.Context(), id); err != nil {
		writeError(w, r, err, "staff deletion")
		return
	}
	writeSuccess(w, http.StatusOK, staffResponse{StaffID: id, Message: "Staff member deleted successfully"})
}

// Reorder handles PATCH /api/staff with the complete list in display order.
func (h *StaffHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req staffReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "staff reorder")
		return
	}
	if err := h.staff.Reorder(r.Context(), req.OrderedStaff); err != nil {
		writeError(w, r, err, "staff reorder")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Staff order updated successfully"})
}
