package storage

import (
	"context"
	"fmt"
	"time"
)

// Config holds storage configuration
type Config struct {
	Type          string // "apps_script", "s3" or "mock"
	AppsScriptURL string // Google Apps Script web app URL
	MockDir       string // Directory for mock storage
	S3Bucket      string
	S3Region      string
	S3Endpoint    string // optional, for S3-compatible stores
	S3AccessKey   string // optional, falls back to the default credential chain
	S3SecretKey   string
	S3Prefix      string
	Timeout       time.Duration
}

// NewPhotoStorage builds the backend selected by cfg.Type.
func NewPhotoStorage(ctx context.Context, cfg Config) (PhotoStorage, error) {
	switch cfg.Type {
	case "", "apps_script":
		return NewAppsScriptStorage(cfg.AppsScriptURL, cfg.Timeout, nil), nil
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "mock":
		return NewMockStorageService(cfg.MockDir)
	default:
		return nil, fmt.Errorf("unknown photo storage type %q", cfg.Type)
	}
}
