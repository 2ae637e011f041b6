package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "frontdesk-rental-backend/internal/api/http"
	"frontdesk-rental-backend/internal/app"
	"frontdesk-rental-backend/internal/config"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/security"
	"frontdesk-rental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Front Desk Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Sheets configuration", "driver", cfg.Sheets.Driver, "rentals_sheet", cfg.Sheets.RentalsSheet, "schema_version", cfg.Sheets.SchemaVersion)

	ctx := context.Background()

	// Initialize store, collaborators and services
	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	// Initialize Security
	var tokenManager security.TokenManager
	var verifier security.IDTokenVerifier
	if cfg.Auth.Enabled {
		tokenManager = security.NewTokenManager(cfg.Auth.SessionSecret, cfg.SessionTTL())
		verifier, err = security.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID, cfg.Sheets.ServiceAccountKeyBase64)
		if err != nil {
			logger.Error("Failed to initialize ID token verifier", "error", err)
			log.Fatalf("Failed to initialize ID token verifier: %v", err)
		}
		logger.Info("Admin auth enabled", "allowed_domain", cfg.Auth.AllowedEmailDomain)
	} else {
		logger.Warn("Admin auth disabled: administrative routes are open")
	}

	// Serve mock photos back for local runs
	var photoDir string
	if mockStorage, ok := a.Photos.(*storage.MockStorageService); ok {
		photoDir = mockStorage.GetLocalPath()
		logger.Info("Serving mock photos", "dir", photoDir)
	}

	handler := httpapi.NewRouter(httpapi.RouterDeps{
		Rentals:        a.Rentals,
		Lifecycle:      a.Lifecycle,
		History:        a.History,
		Staff:          a.Staff,
		Export:         a.Export,
		Store:          a.Store,
		Metrics:        a.Metrics,
		Verifier:       verifier,
		Tokens:         tokenManager,
		AuthEnabled:    cfg.Auth.Enabled,
		AllowedDomain:  cfg.Auth.AllowedEmailDomain,
		SecureCookie:   cfg.Auth.SecureCookie,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyMB << 20,
		PhotoDir:       photoDir,
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
