// Package app assembles the store, collaborators and services from config so
// the server and the cron runner are wired identically.
package app

import (
	"context"
	"fmt"

	"frontdesk-rental-backend/internal/config"
	"frontdesk-rental-backend/internal/lock"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/metrics"
	"frontdesk-rental-backend/internal/repository/sheets"
	"frontdesk-rental-backend/internal/schema"
	"frontdesk-rental-backend/internal/service"
	"frontdesk-rental-backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

type App struct {
	Config  *config.Config
	Schema  *schema.Schema
	Store   *sheets.Store
	Metrics *metrics.Metrics
	Photos  storage.PhotoStorage

	Rentals   service.RentalService
	Lifecycle service.LifecycleService
	History   service.HistoryService
	Staff     service.StaffService
	Export    service.ExportService
	// Email is nil when SendGrid is not configured.
	Email service.EmailService

	redis *redis.Client
}

// New builds every dependency described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	registry, err := schema.NewRegistry(cfg.Sheets.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet schema: %w", err)
	}
	sch := registry.Current()
	logger.Info("Sheet schema selected", "version", sch.Version(), "columns", len(sch.Header()))

	client, err := newSheetsClient(ctx, cfg, sch)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Schema:  sch,
		Metrics: metrics.New(),
		Store: sheets.NewStore(client, sch, sheets.Options{
			RentalsSheet: cfg.Sheets.RentalsSheet,
			StaffSheet:   cfg.Sheets.StaffSheet,
			Timeout:      cfg.SheetsTimeout(),
		}),
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		return nil, err
	}

	a.Photos, err = storage.NewPhotoStorage(ctx, cfg.StorageConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	logger.Info("Photo storage initialized", "type", cfg.Upload.Type)

	if cfg.Notification.SendGridAPIKey != "" {
		a.Email = service.NewSendGridEmailService(
			cfg.Notification.SendGridAPIKey,
			cfg.Notification.FromEmail,
			cfg.Notification.FromName,
			cfg.Notification.Recipients,
		)
		logger.Info("Trouble notifications enabled", "recipients", len(cfg.Notification.Recipients))
	} else {
		logger.Info("Trouble notifications disabled: no SendGrid API key")
	}

	pricing := cfg.PricingRules()
	a.Rentals = service.NewRentalService(a.Store.Rentals, sch, locker, a.Photos, service.NewIDGenerator(nil), pricing, a.Metrics)
	a.Lifecycle = service.NewLifecycleService(a.Store.Rentals, sch, locker, a.Photos, a.Email, pricing, a.Metrics)
	a.History = service.NewHistoryService(a.Store.Rentals)
	a.Staff = service.NewStaffService(a.Store.Staff, locker)
	a.Export = service.NewExportService(a.Store.Rentals, cfg.ExportLocation(), cfg.Export.PDFFontPath)
	return a, nil
}

func newSheetsClient(ctx context.Context, cfg *config.Config, sch *schema.Schema) (sheets.Client, error) {
	switch cfg.Sheets.Driver {
	case "memory":
		logger.Warn("Using in-memory spreadsheet: data is lost on restart")
		return sheets.NewMemoryClient(map[string][]string{
			rentalsSheet(cfg): sch.Header(),
			staffSheet(cfg):   {"id", "name", "lastUpdated", "order"},
		}), nil
	default:
		client, err := sheets.NewGoogleClient(ctx, cfg.Sheets.ServiceAccountKeyBase64, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
		return client, nil
	}
}

// newLocker serializes rental mutations in-process, or across replicas when
// Redis is enabled.
func (a *App) newLocker(ctx context.Context) (lock.Locker, error) {
	cfg := a.Config.Redis
	if !cfg.Enabled {
		return lock.NewKeyedMutex(), nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redis = client
	logger.Info("Redis lock enabled", "addr", cfg.Addr, "ttl", a.Config.LockTTL())
	return lock.NewRedisLocker(client, a.Config.LockTTL()), nil
}

// Close releases network clients.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
}

func rentalsSheet(cfg *config.Config) string {
	if cfg.Sheets.RentalsSheet != "" {
		return cfg.Sheets.RentalsSheet
	}
	return sheets.DefaultRentalsSheet
}

func staffSheet(cfg *config.Config) string {
	if cfg.Sheets.StaffSheet != "" {
		return cfg.Sheets.StaffSheet
	}
	return sheets.DefaultStaffSheet
}
