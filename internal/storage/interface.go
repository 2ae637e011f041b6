package storage

import (
	"context"
	"encoding/base64"
	"strings"

	"frontdesk-rental-backend/internal/apperr"
)

// PhotoStorage defines the interface for ID photo backends.
// Supports the Apps Script web app (production), S3 and a local mock.
type PhotoStorage interface {
	// UploadPhoto stores the photo and returns the backend file identifier
	// written to the rental's photoFileID cell.
	UploadPhoto(ctx context.Context, photo Photo) (string, error)
}

// Photo is an ID photo as received from the front desk client.
type Photo struct {
	RentalID string
	FileName string
	MimeType string
	// Data is base64 text, optionally prefixed with a data URL header
	// ("data:image/jpeg;base64,").
	Data string
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// AllowedMimeType reports whether an ID photo may have the given MIME type.
func AllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// Decode returns the raw photo bytes.
func (p Photo) Decode() ([]byte, error) {
	data := p.Data
	if i := strings.Index(data, "base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, apperr.Validation("photoData", "Photo data must be base64 encoded").Wrap(err)
	}
	return raw, nil
}

// ContentType returns the declared MIME type, falling back to the data URL
// header and then to JPEG.
func (p Photo) ContentType() string {
	if p.MimeType != "" {
		return p.MimeType
	}
	if strings.HasPrefix(p.Data, "data:") {
		if end := strings.Index(p.Data, ";"); end > len("data:") {
			return p.Data[len("data:"):end]
		}
	}
	return "image/jpeg"
}
