package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loantracker/internal/domain/loan"
	"loantracker/internal/event"
	"loantracker/internal/infrastructure/monitoring"
	"loantracker/internal/pkg/apperrors"
)

// PaymentReminderJob scans every loan's schedule and publishes an event
// for each next payment falling due inside the reminder window.
type PaymentReminderJob struct {
	loanService loan.LoanService
	publisher   event.EventPublisher
	windowDays  int
	logger      *slog.Logger
}

func NewPaymentReminderJob(loanSvc loan.LoanService, publisher event.EventPublisher, windowDays int, logger *slog.Logger) *PaymentReminderJob {
	if loanSvc == nil || publisher == nil || logger == nil {
		panic("PaymentReminderJob dependencies cannot be nil")
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &PaymentReminderJob{
		loanService: loanSvc,
		publisher:   publisher,
		windowDays:  windowDays,
		logger:      logger.With("job", "PaymentReminder"),
	}
}

func (j *PaymentReminderJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting payment reminder job.", slog.Int("window_days", j.windowDays))

	loans, err := j.loanService.ListLoans(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list loans: %w", err)
	}

	if len(loans) == 0 {
		j.logger.InfoContext(ctx, "No loans found to process.")
		return nil
	}

	windowEnd := time.Now().AddDate(0, 0, j.windowDays)
	var publishedCount, skippedCount, errorCount int

	for i := range loans {
		l := &loans[i]
		logCtx := j.logger.With(slog.Int64("loanID", l.ID))

		result, scheduleErr := j.loanService.GetSchedule(ctx, l.ID)
		if scheduleErr != nil {
			if errors.Is(scheduleErr, apperrors.ErrNotFound) {
				logCtx.WarnContext(ctx, "Loan disappeared during reminder scan", slog.Any("error", scheduleErr))
			} else {
				logCtx.ErrorContext(ctx, "Failed to compute schedule", slog.Any("error", scheduleErr))
				errorCount++
			}
			continue
		}

		next := result.Summary.NextPayment
		if next == nil || next.Date.After(windowEnd) {
			skippedCount++
			continue
		}

		reminder := event.PaymentUpcomingEvent{
			LoanID:       l.ID,
			LoanName:     l.Name,
			PeriodNumber: next.Number,
			DueDate:      next.Date.Format(time.DateOnly),
			Amount:       next.Amount.StringFixed(2),
		}
		if pubErr := j.publisher.PublishPaymentUpcoming(ctx, reminder); pubErr != nil {
			logCtx.ErrorContext(ctx, "Failed to publish payment reminder", slog.Any("error", pubErr))
			errorCount++
			continue
		}

		monitoring.RecordReminderPublished()
		logCtx.InfoContext(ctx, "Published payment reminder.",
			slog.Int("period", next.Number),
			slog.String("due_date", reminder.DueDate),
		)
		publishedCount++
	}

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("loans_scanned", len(loans)),
		slog.Int("reminders_published", publishedCount),
		slog.Int("loans_outside_window", skippedCount),
		slog.Int("errors_encountered", errorCount),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Payment reminder job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Payment reminder job finished successfully.")
	return nil
}
