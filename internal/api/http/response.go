package http

import (
	"encoding/json"
	"net/http"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeSuccess renders payload with "success":true and a timestamp spliced
// into the top-level object. payload must marshal to a JSON object.
func writeSuccess(w http.ResponseWriter, status int, payload any) {
	body := map[string]any{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			writeError(w, nil, apperr.Internal("response encoding", err), "response encoding")
			return
		}
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			writeError(w, nil, apperr.Internal("response encoding", err), "response encoding")
			return
		}
		for k, v := range fields {
			body[k] = v
		}
	}
	body["success"] = true
	body["timestamp"] = domain.FormatTime(time.Now())
	writeJSON(w, status, body)
}

// writeError renders err in the {success:false, kind, error, message, ...extra}
// shape. kind is the stable classification; error is the human title. Unclassified errors are logged in full and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	appErr := apperr.From(err, operation)
	if appErr.Status >= http.StatusInternalServerError {
		args := []any{"operation", operation, "kind", appErr.Kind, "error", err}
		if r != nil {
			logger.ErrorContext(r.Context(), "Request failed", append(args, "method", r.Method, "path", r.URL.Path)...)
		} else {
			logger.Error("Request failed", args...)
		}
	} else if r != nil {
		logger.DebugContext(r.Context(), "Request rejected", "operation", operation, "kind", appErr.Kind, "error", appErr.Title)
	}

	body := make(map[string]any, len(appErr.Extra)+4)
	for k, v := range appErr.Extra {
		body[k] = v
	}
	body["success"] = false
	body["kind"] = appErr.Kind
	body["error"] = appErr.Title
	body["message"] = appErr.Message
	writeJSON(w, appErr.Status, body)
}

// decodeJSON reads the request body into dst; any parse failure is MalformedInput.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.MalformedInput(err)
	}
	return nil
}
