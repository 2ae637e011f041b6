package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/logger"
)

const (
	defaultUploadTimeout = 30 * time.Second
	photoUploadTitle     = "Photo upload failed"
)

// AppsScriptStorage forwards photos to a Google Apps Script web app that
// writes them to Drive and answers with the Drive file id.
type AppsScriptStorage struct {
	url        string
	httpClient *http.Client
}

type uploadRequest struct {
	Action    string `json:"action"`
	RentalID  string `json:"rentalID,omitempty"`
	PhotoData string `json:"photoData"`
	FileName  string `json:"fileName"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// NewAppsScriptStorage creates the Apps Script backend. A nil client gets a
// default one bounded by timeout.
func NewAppsScriptStorage(url string, timeout time.Duration, client *http.Client) *AppsScriptStorage {
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &AppsScriptStorage{url: url, httpClient: client}
}

func (s *AppsScriptStorage) UploadPhoto(ctx context.Context, photo Photo) (string, error) {
	if s.url == "" {
		return "", apperr.Upstream(http.StatusInternalServerError, "Configuration error",
			"GOOGLE_APPS_SCRIPT_WEB_APP_URL not configured")
	}

	body, err := json.Marshal(uploadRequest{
		Action:    "uploadPhoto",
		RentalID:  photo.RentalID,
		PhotoData: photo.Data,
		FileName:  photo.FileName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("apps_script", "uploadPhoto", "rental_id", photo.RentalID, "file_name", photo.FileName)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("apps_script", "uploadPhoto", err)
		return "", apperr.Upstream(http.StatusServiceUnavailable, photoUploadTitle,
			"Photo upload service is unavailable").Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		logger.ExternalServiceResult("apps_script", "uploadPhoto", err, "status", resp.StatusCode)
		return "", apperr.Upstream(http.StatusBadGateway, photoUploadTitle,
			"Photo upload service response could not be read").Wrap(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("apps script returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("apps_script", "uploadPhoto", err, "body", string(raw))
		return "", apperr.Upstream(http.StatusBadGateway, photoUploadTitle,
			"Failed to upload photo to Google Apps Script").With("details", string(raw)).Wrap(err)
	}

	var result uploadResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.ExternalServiceResult("apps_script", "uploadPhoto", err)
		return "", apperr.Upstream(http.StatusBadGateway, photoUploadTitle,
			"Photo upload service returned an invalid response").Wrap(err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Failed to upload photo"
		}
		details := result.Details
		if details == "" {
			details = "No additional details"
		}
		err := fmt.Errorf("apps script upload rejected: %s", msg)
		logger.ExternalServiceResult("apps_script", "uploadPhoto", err)
		return "", apperr.Upstream(http.StatusInternalServerError, photoUploadTitle, msg).With("details", details).Wrap(err)
	}

	logger.ExternalServiceResult("apps_script", "uploadPhoto", nil, "file_id", result.FileID)
	return result.FileID, nil
}
