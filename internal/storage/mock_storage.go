package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"frontdesk-rental-backend/internal/logger"

	"github.com/google/uuid"
)

// MockStorageService stores photos on the local filesystem
// This is for demo/testing without the Apps Script web app or S3
type MockStorageService struct {
	photosDir string
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(uploadsDir string) (*MockStorageService, error) {
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}
	photosDir := filepath.Join(uploadsDir, "photos")

	// Create directories if they don't exist
	if err := os.MkdirAll(photosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}

	return &MockStorageService{photosDir: photosDir}, nil
}

// UploadPhoto writes the decoded photo under a generated file id
func (m *MockStorageService) UploadPhoto(ctx context.Context, photo Photo) (string, error) {
	data, err := photo.Decode()
	if err != nil {
		return "", err
	}

	fileID := "mock-" + uuid.New().String()
	name := fileID
	if photo.FileName != "" {
		name = fileID + "_" + filepath.Base(photo.FileName)
	}
	fullPath := filepath.Join(m.photosDir, name)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debug("Mock photo stored", "rental_id", photo.RentalID, "path", fullPath, "size", len(data))
	return fileID, nil
}

// GetLocalPath returns the directory photos are written to
func (m *MockStorageService) GetLocalPath() string {
	return m.photosDir
}
