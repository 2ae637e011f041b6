package jobs

import (
	"context"

	"frontdesk-rental-backend/internal/logger"
)

// FlagLateRentals marks Active rentals past their expected return as late.
// Status is left alone; only isLate and minutesLate change.
func (jr *JobRunner) FlagLateRentals() {
	jr.runWithRecovery("FlagLateRentals", func(ctx context.Context) {
		flagged, err := jr.services.Lifecycle.FlagLateRentals(ctx)
		if err != nil {
			logger.Error("Failed to flag late rentals", "flagged", flagged, "error", err)
			return
		}
		logger.Info("Flagged late rentals", "count", flagged)
	})
}
