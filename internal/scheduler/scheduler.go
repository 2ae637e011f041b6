package scheduler

import (
	"time"

	"frontdesk-rental-backend/internal/jobs"
	"frontdesk-rental-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. Specs are
// evaluated in loc (the hotel's time zone) with seconds precision.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	registered := 0
	for _, job := range []struct {
		name string
		spec string
		fn   func()
	}{
		{"FlagLateRentals", cfg.FlagLateRentals, s.jobs.FlagLateRentals},
		{"LogDailySummary", cfg.DailySummary, s.jobs.LogDailySummary},
	} {
		if job.spec == "" || job.spec == "-" {
			logger.Info("Cron job disabled", "job", job.name)
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.fn); err != nil {
			logger.Error("Failed to register cron job", "job", job.name, "spec", job.spec, "error", err)
			continue
		}
		registered++
	}

	logger.Info("Cron jobs registered", "count", registered)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
