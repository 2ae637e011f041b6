package jobs

import (
	"context"
	"time"

	"frontdesk-rental-backend/internal/config"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/service"
)

// jobTimeout bounds a single run so a hung spreadsheet call cannot stall the next tick.
const jobTimeout = 2 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs. Email may be nil
// when notifications are not configured.
type Services struct {
	Lifecycle service.LifecycleService
	History   service.HistoryService
	Email     service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a timeout
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	log := logger.WithService("cronjob").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	log.Info("Starting job")
	jobFunc(ctx)
	log.Info("Job completed", "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.FlagLateRentals()
	jr.LogDailySummary()
}
