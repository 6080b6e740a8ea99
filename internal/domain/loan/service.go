package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/domain/schedule"
	"loantracker/internal/event"
	"loantracker/internal/infrastructure/monitoring"
	"loantracker/internal/pkg/apperrors"
)

// CreateParams carries the validated fields for creating a loan. Update
// uses the same shape; loans are replaced wholesale like the edit form
// they mirror.
type CreateParams struct {
	Name           string
	Principal      decimal.Decimal
	AnnualRate     decimal.Decimal
	Frequency      schedule.Frequency
	StartDate      time.Time
	LoanTerm       int
	FixedRepayment *decimal.Decimal
}

type RateChangeParams struct {
	EffectiveDate     time.Time
	AnnualRate        decimal.Decimal
	AdjustedRepayment *decimal.Decimal
	Note              string
}

type RepaymentChangeParams struct {
	EffectiveDate time.Time
	Amount        decimal.Decimal
	Note          string
}

type ExtraRepaymentParams struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
	Note        string
}

type LoanService interface {
	CreateLoan(ctx context.Context, params CreateParams) (*Loan, error)
	GetLoan(ctx context.Context, loanID int64) (*Detail, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	UpdateLoan(ctx context.Context, loanID int64, params CreateParams) (*Loan, error)
	DeleteLoan(ctx context.Context, loanID int64) error

	AddRateChange(ctx context.Context, loanID int64, params RateChangeParams) (*RateChange, error)
	DeleteRateChange(ctx context.Context, loanID, changeID int64) error
	AddRepaymentChange(ctx context.Context, loanID int64, params RepaymentChangeParams) (*RepaymentChange, error)
	DeleteRepaymentChange(ctx context.Context, loanID, changeID int64) error
	AddExtraRepayment(ctx context.Context, loanID int64, params ExtraRepaymentParams) (*ExtraRepayment, error)
	DeleteExtraRepayment(ctx context.Context, loanID, extraID int64) error

	MarkPaid(ctx context.Context, loanID int64, periodNumber int) error
	UnmarkPaid(ctx context.Context, loanID int64, periodNumber int) error

	GetSchedule(ctx context.Context, loanID int64) (*schedule.Result, error)
	WhatIf(ctx context.Context, loanID int64, overlay schedule.Overlay) (*schedule.Result, error)
	SolvePayoffTarget(ctx context.Context, loanID int64, targetDate time.Time) (*schedule.PayoffSolution, error)
	PreviewRateChange(ctx context.Context, loanID int64, params RateChangeParams) (*schedule.RateChangePreview, error)
	PreviewRepaymentChange(ctx context.Context, loanID int64, params RepaymentChangeParams) (*schedule.RepaymentChangePreview, error)
}

type loanServiceImpl struct {
	repo      Repository
	publisher event.EventPublisher
	logger    *slog.Logger
}

func NewLoanService(r Repository, publisher event.EventPublisher, logger *slog.Logger) LoanService {
	return &loanServiceImpl{repo: r, publisher: publisher, logger: logger}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, params CreateParams) (*Loan, error) {
	s.logger.Info("Creating new loan", "name", params.Name)
	l, err := NewLoan(params.Name, params.Principal, params.AnnualRate, params.Frequency, params.StartDate, params.LoanTerm, params.FixedRepayment)
	if err != nil {
		s.logger.Error("Failed to build loan object", "error", err)
		return nil, err
	}

	created, err := s.repo.CreateLoan(ctx, l)
	if err != nil {
		s.logger.Error("Failed to save loan", "error", err)
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	s.notifyLoanChanged(ctx, created.ID, event.ActionCreated, "loan")
	s.logger.Info("Loan created successfully", "loanID", created.ID)
	return created, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Detail, error) {
	l, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	tls, err := s.repo.GetTimelines(ctx, loanID)
	if err != nil {
		s.logger.Error("Failed to load loan timelines", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to load timelines for loan %d: %w", loanID, err)
	}
	return &Detail{Loan: *l, Timelines: *tls}, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context) ([]Loan, error) {
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		s.logger.Error("Failed to list loans", "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (s *loanServiceImpl) UpdateLoan(ctx context.Context, loanID int64, params CreateParams) (*Loan, error) {
	s.logger.Info("Updating loan", "loanID", loanID)
	existing, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	l, err := NewLoan(params.Name, params.Principal, params.AnnualRate, params.Frequency, params.StartDate, params.LoanTerm, params.FixedRepayment)
	if err != nil {
		s.logger.Error("Failed to validate loan update", "loanID", loanID, "error", err)
		return nil, err
	}
	l.ID = existing.ID
	l.CreatedAt = existing.CreatedAt

	updated, err := s.repo.UpdateLoan(ctx, l)
	if err != nil {
		s.logger.Error("Failed to update loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to update loan %d: %w", loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionUpdated, "loan")
	return updated, nil
}

func (s *loanServiceImpl) DeleteLoan(ctx context.Context, loanID int64) error {
	s.logger.Info("Deleting loan", "loanID", loanID)
	if err := s.repo.DeleteLoan(ctx, loanID); err != nil {
		s.logger.Error("Failed to delete loan", "loanID", loanID, "error", err)
		return err
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionDeleted, "loan")
	return nil
}

func (s *loanServiceImpl) AddRateChange(ctx context.Context, loanID int64, params RateChangeParams) (*RateChange, error) {
	l, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := validateChangeDate("effective_date", params.EffectiveDate, l.StartDate); err != nil {
		return nil, err
	}
	if params.AnnualRate.IsNegative() {
		return nil, apperrors.NewValidationError("annual_rate", "must not be negative")
	}
	if params.AdjustedRepayment != nil {
		if err := validateAmount("adjusted_repayment", *params.AdjustedRepayment); err != nil {
			return nil, err
		}
	}
	if err := validateNote(params.Note); err != nil {
		return nil, err
	}

	created, err := s.repo.AddRateChange(ctx, &RateChange{
		LoanID:            loanID,
		EffectiveDate:     params.EffectiveDate,
		AnnualRate:        params.AnnualRate,
		AdjustedRepayment: params.AdjustedRepayment,
		Note:              params.Note,
	})
	if err != nil {
		s.logger.Error("Failed to save rate change", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to save rate change for loan %d: %w", loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionCreated, "rate_change")
	return created, nil
}

func (s *loanServiceImpl) DeleteRateChange(ctx context.Context, loanID, changeID int64) error {
	if err := s.repo.DeleteRateChange(ctx, loanID, changeID); err != nil {
		return err
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionDeleted, "rate_change")
	return nil
}

func (s *loanServiceImpl) AddRepaymentChange(ctx context.Context, loanID int64, params RepaymentChangeParams) (*RepaymentChange, error) {
	l, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := validateChangeDate("effective_date", params.EffectiveDate, l.StartDate); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", params.Amount); err != nil {
		return nil, err
	}
	if err := validateNote(params.Note); err != nil {
		return nil, err
	}

	created, err := s.repo.AddRepaymentChange(ctx, &RepaymentChange{
		LoanID:        loanID,
		EffectiveDate: params.EffectiveDate,
		Amount:        params.Amount,
		Note:          params.Note,
	})
	if err != nil {
		s.logger.Error("Failed to save repayment change", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to save repayment change for loan %d: %w", loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionCreated, "repayment_change")
	return created, nil
}

func (s *loanServiceImpl) DeleteRepaymentChange(ctx context.Context, loanID, changeID int64) error {
	if err := s.repo.DeleteRepaymentChange(ctx, loanID, changeID); err != nil {
		return err
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionDeleted, "repayment_change")
	return nil
}

func (s *loanServiceImpl) AddExtraRepayment(ctx context.Context, loanID int64, params ExtraRepaymentParams) (*ExtraRepayment, error) {
	l, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := validateChangeDate("payment_date", params.PaymentDate, l.StartDate); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", params.Amount); err != nil {
		return nil, err
	}
	if err := validateNote(params.Note); err != nil {
		return nil, err
	}

	created, err := s.repo.AddExtraRepayment(ctx, &ExtraRepayment{
		LoanID:      loanID,
		PaymentDate: params.PaymentDate,
		Amount:      params.Amount,
		Note:        params.Note,
	})
	if err != nil {
		s.logger.Error("Failed to save extra repayment", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to save extra repayment for loan %d: %w", loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionCreated, "extra_repayment")
	return created, nil
}

func (s *loanServiceImpl) DeleteExtraRepayment(ctx context.Context, loanID, extraID int64) error {
	if err := s.repo.DeleteExtraRepayment(ctx, loanID, extraID); err != nil {
		return err
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionDeleted, "extra_repayment")
	return nil
}

func (s *loanServiceImpl) MarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	if periodNumber < 1 {
		return apperrors.NewValidationError("period_number", "must be at least 1")
	}
	if _, err := s.repo.GetLoan(ctx, loanID); err != nil {
		return err
	}
	if err := s.repo.MarkPaid(ctx, loanID, periodNumber); err != nil {
		s.logger.Error("Failed to mark payment as paid", "loanID", loanID, "period", periodNumber, "error", err)
		return fmt.Errorf("failed to mark period %d paid for loan %d: %w", periodNumber, loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionUpdated, "paid")
	return nil
}

func (s *loanServiceImpl) UnmarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	if periodNumber < 1 {
		return apperrors.NewValidationError("period_number", "must be at least 1")
	}
	if _, err := s.repo.GetLoan(ctx, loanID); err != nil {
		return err
	}
	if err := s.repo.UnmarkPaid(ctx, loanID, periodNumber); err != nil {
		s.logger.Error("Failed to unmark paid payment", "loanID", loanID, "period", periodNumber, "error", err)
		return fmt.Errorf("failed to unmark period %d for loan %d: %w", periodNumber, loanID, err)
	}
	s.notifyLoanChanged(ctx, loanID, event.ActionUpdated, "paid")
	return nil
}

func (s *loanServiceImpl) GetSchedule(ctx context.Context, loanID int64) (*schedule.Result, error) {
	in, err := s.loadInput(ctx, loanID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := schedule.Generate(*in)
	if err != nil {
		s.logger.Error("Schedule generation failed", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to generate schedule for loan %d: %w", loanID, err)
	}
	monitoring.RecordScheduleComputed("base", time.Since(started))
	if result.Summary.Warning != "" {
		s.logger.Warn("Schedule did not fully amortize", "loanID", loanID, "warning", result.Summary.Warning)
	}
	return result, nil
}

func (s *loanServiceImpl) WhatIf(ctx context.Context, loanID int64, overlay schedule.Overlay) (*schedule.Result, error) {
	in, err := s.loadInput(ctx, loanID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := schedule.GenerateWhatIf(*in, overlay)
	if err != nil {
		s.logger.Error("What-if generation failed", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to generate what-if schedule for loan %d: %w", loanID, err)
	}
	monitoring.RecordScheduleComputed("whatif", time.Since(started))
	return result, nil
}

func (s *loanServiceImpl) SolvePayoffTarget(ctx context.Context, loanID int64, targetDate time.Time) (*schedule.PayoffSolution, error) {
	in, err := s.loadInput(ctx, loanID)
	if err != nil {
		return nil, err
	}

	solution, err := schedule.SolvePayoffTarget(*in, targetDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrTargetUnreachable) {
			monitoring.RecordSolverRun("unreachable")
			s.logger.Info("Payoff target unreachable", "loanID", loanID, "target", targetDate.Format(time.DateOnly))
			return nil, err
		}
		monitoring.RecordSolverRun("error")
		s.logger.Error("Payoff solver failed", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to solve payoff target for loan %d: %w", loanID, err)
	}
	monitoring.RecordSolverRun("found")
	return solution, nil
}

func (s *loanServiceImpl) PreviewRateChange(ctx context.Context, loanID int64, params RateChangeParams) (*schedule.RateChangePreview, error) {
	in, err := s.loadInput(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if params.AnnualRate.IsNegative() {
		return nil, apperrors.NewValidationError("annual_rate", "must not be negative")
	}

	started := time.Now()
	preview, err := schedule.PreviewRateChange(*in, schedule.RateChange{
		EffectiveDate: params.EffectiveDate,
		AnnualRate:    params.AnnualRate,
		Note:          params.Note,
	})
	if err != nil {
		s.logger.Error("Rate-change preview failed", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to preview rate change for loan %d: %w", loanID, err)
	}
	monitoring.RecordScheduleComputed("preview", time.Since(started))
	return preview, nil
}

func (s *loanServiceImpl) PreviewRepaymentChange(ctx context.Context, loanID int64, params RepaymentChangeParams) (*schedule.RepaymentChangePreview, error) {
	in, err := s.loadInput(ctx, loanID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	preview, err := schedule.PreviewRepaymentChange(*in, schedule.RepaymentChange{
		EffectiveDate: params.EffectiveDate,
		Amount:        params.Amount,
		Note:          params.Note,
	})
	if err != nil {
		s.logger.Error("Repayment-change preview failed", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to preview repayment change for loan %d: %w", loanID, err)
	}
	monitoring.RecordScheduleComputed("preview", time.Since(started))
	return preview, nil
}

func (s *loanServiceImpl) loadInput(ctx context.Context, loanID int64) (*schedule.Input, error) {
	l, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	tls, err := s.repo.GetTimelines(ctx, loanID)
	if err != nil {
		s.logger.Error("Failed to load loan timelines", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to load timelines for loan %d: %w", loanID, err)
	}
	in := EngineInput(l, tls)
	return &in, nil
}

// notifyLoanChanged publishes best-effort; a broker outage must not fail
// the request that already committed.
func (s *loanServiceImpl) notifyLoanChanged(ctx context.Context, loanID int64, action, what string) {
	evt := event.LoanChangedEvent{LoanID: loanID, Action: action, What: what, Timestamp: time.Now()}
	if err := s.publisher.PublishLoanChanged(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish loan change event", "loanID", loanID, "action", action, "error", err)
	}
}
