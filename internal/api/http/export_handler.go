package http

import (
	"fmt"
	"net/http"
	"strconv"

	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/service"
)

type ExportHandler struct {
	export service.ExportService
}

func NewExportHandler(export service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Onsen streams the onsen spreadsheet (or PDF) as an attachment.
func (h *ExportHandler) Onsen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	file, err := h.export.ExportOnsen(r.Context(), service.ExportQuery{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Format:    q.Get("format"),
	})
	if err != nil {
		writeError(w, r, err, "onsen export")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.WarnContext(r.Context(), "Failed to write export", "file", file.FileName, "error", err)
	}
}
