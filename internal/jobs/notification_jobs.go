package jobs

import (
	"context"

	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/logger"
)

var summaryStatuses = []domain.RentalStatus{
	domain.RentalStatusPending,
	domain.RentalStatusAwaitingStorage,
	domain.RentalStatusActive,
	domain.RentalStatusTroubled,
	domain.RentalStatusClosed,
	domain.RentalStatusPickedUp,
}

// LogDailySummary logs the rental count per status and mails it to the
// front desk when notifications are configured.
func (jr *JobRunner) LogDailySummary() {
	jr.runWithRecovery("LogDailySummary", func(ctx context.Context) {
		counts, err := jr.services.History.StatusSummary(ctx)
		if err != nil {
			logger.Error("Failed to build daily summary", "error", err)
			return
		}

		args := make([]any, 0, 2*len(summaryStatuses)+2)
		total := 0
		for _, status := range summaryStatuses {
			args = append(args, string(status), counts[status])
		}
		for _, n := range counts {
			total += n
		}
		args = append(args, "total", total)
		logger.Info("Daily rental summary", args...)

		if jr.services.Email == nil {
			return
		}
		if err := jr.services.Email.SendDailySummary(ctx, counts); err != nil {
			logger.Error("Failed to send daily summary", "error", err)
		}
	})
}
