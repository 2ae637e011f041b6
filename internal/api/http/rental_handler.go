package http

import (
	"net/http"
	"strconv"
	"strings"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/service"
)

type RentalHandler struct {
	rentals service.RentalService
	history service.HistoryService
}

func NewRentalHandler(rentals service.RentalService, history service.HistoryService) *RentalHandler {
	return &RentalHandler{rentals: rentals, history: history}
}

// Register handles POST /api/rentals. ?type=counter marks a counter registration.
func (h *RentalHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "rental registration")
		return
	}
	req.RegistrationType = r.URL.Query().Get("type")

	result, err := h.rentals.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, "rental registration")
		return
	}
	writeSuccess(w, http.StatusCreated, result)
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err, "rental listing")
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		writeError(w, r, err, "rental listing")
		return
	}

	result, err := h.rentals.List(r.Context(), service.ListFilter{
		Status:      q.Get("status"),
		ServiceType: q.Get("serviceType"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, r, err, "rental listing")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// Update handles PUT /api/rentals. The body is kept loosely typed because any
// column of the sheet may be edited.
func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, r, err, "rental update")
		return
	}
	result, err := h.rentals.Update(r.Context(), fields)
	if err != nil {
		writeError(w, r, err, "rental update")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.rentals.Delete(r.Context(), r.URL.Query().Get("rentalID"))
	if err != nil {
		writeError(w, r, err, "rental deletion")
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

type historyResponse struct {
	Rentals    any `json:"rentals"`
	Total      int `json:"total"`
	Filtered   int `json:"filtered"`
	Stats      any `json:"stats"`
	Pagination any `json:"pagination"`
	Filters    any `json:"filters"`
}

// History handles GET /api/rentals/history.
func (h *RentalHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err, "history search")
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		writeError(w, r, err, "history search")
		return
	}

	result, err := h.history.Search(r.Context(), service.HistoryQuery{
		StartDate:       q.Get("startDate"),
		EndDate:         q.Get("endDate"),
		Status:          q.Get("status"),
		ServiceType:     q.Get("serviceType"),
		CustomerName:    q.Get("customerName"),
		CustomerContact: q.Get("customerContact"),
		StaffName:       q.Get("staffName"),
		RentalID:        q.Get("rentalID"),
		Limit:           limit,
		Offset:          offset,
		SortBy:          q.Get("sortBy"),
		SortOrder:       q.Get("sortOrder"),
	})
	if err != nil {
		writeError(w, r, err, "history search")
		return
	}
	writeSuccess(w, http.StatusOK, historyResponse{
		Rentals:    result.Rentals,
		Total:      result.Scanned,
		Filtered:   result.Pagination.Total,
		Stats:      result.Statistics,
		Pagination: result.Pagination,
		Filters:    result.Filters,
	})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation(name, name+" must be a non-negative integer")
	}
	return n, nil
}
