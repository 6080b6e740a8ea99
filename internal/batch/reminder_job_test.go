package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loantracker/internal/batch"
	"loantracker/internal/domain/loan"
	"loantracker/internal/domain/schedule"
	"loantracker/internal/event"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, params loan.CreateParams) (*loan.Loan, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.Loan), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Detail, error) {
	ret := m.Called(ctx, loanID)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.Detail), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context) ([]loan.Loan, error) {
	ret := m.Called(ctx)
	if ret.Get(0) != nil {
		return ret.Get(0).([]loan.Loan), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) UpdateLoan(ctx context.Context, loanID int64, params loan.CreateParams) (*loan.Loan, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.Loan), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) DeleteLoan(ctx context.Context, loanID int64) error {
	return m.Called(ctx, loanID).Error(0)
}

func (m *MockLoanService) AddRateChange(ctx context.Context, loanID int64, params loan.RateChangeParams) (*loan.RateChange, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.RateChange), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) DeleteRateChange(ctx context.Context, loanID, changeID int64) error {
	return m.Called(ctx, loanID, changeID).Error(0)
}

func (m *MockLoanService) AddRepaymentChange(ctx context.Context, loanID int64, params loan.RepaymentChangeParams) (*loan.RepaymentChange, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.RepaymentChange), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) DeleteRepaymentChange(ctx context.Context, loanID, changeID int64) error {
	return m.Called(ctx, loanID, changeID).Error(0)
}

func (m *MockLoanService) AddExtraRepayment(ctx context.Context, loanID int64, params loan.ExtraRepaymentParams) (*loan.ExtraRepayment, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*loan.ExtraRepayment), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) DeleteExtraRepayment(ctx context.Context, loanID, extraID int64) error {
	return m.Called(ctx, loanID, extraID).Error(0)
}

func (m *MockLoanService) MarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	return m.Called(ctx, loanID, periodNumber).Error(0)
}

func (m *MockLoanService) UnmarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	return m.Called(ctx, loanID, periodNumber).Error(0)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, loanID int64) (*schedule.Result, error) {
	ret := m.Called(ctx, loanID)
	if ret.Get(0) != nil {
		return ret.Get(0).(*schedule.Result), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) WhatIf(ctx context.Context, loanID int64, overlay schedule.Overlay) (*schedule.Result, error) {
	ret := m.Called(ctx, loanID, overlay)
	if ret.Get(0) != nil {
		return ret.Get(0).(*schedule.Result), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) SolvePayoffTarget(ctx context.Context, loanID int64, targetDate time.Time) (*schedule.PayoffSolution, error) {
	ret := m.Called(ctx, loanID, targetDate)
	if ret.Get(0) != nil {
		return ret.Get(0).(*schedule.PayoffSolution), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) PreviewRateChange(ctx context.Context, loanID int64, params loan.RateChangeParams) (*schedule.RateChangePreview, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*schedule.RateChangePreview), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockLoanService) PreviewRepaymentChange(ctx context.Context, loanID int64, params loan.RepaymentChangeParams) (*schedule.RepaymentChangePreview, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*schedule.RepaymentChangePreview), ret.Error(1)
	}
	return nil, ret.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLoanChanged(ctx context.Context, e event.LoanChangedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishScenarioSaved(ctx context.Context, e event.ScenarioSavedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishPaymentUpcoming(ctx context.Context, e event.PaymentUpcomingEvent) error {
	return m.Called(ctx, e).Error(0)
}

func scheduleWithNextPayment(number int, date time.Time) *schedule.Result {
	return &schedule.Result{
		Summary: schedule.Summary{
			NextPayment: &schedule.NextPayment{
				Number: number,
				Date:   date,
				Amount: decimal.RequireFromString("612.39"),
			},
		},
	}
}

func newReminderJob(t *testing.T, windowDays int) (*MockLoanService, *MockPublisher, *batch.PaymentReminderJob) {
	t.Helper()
	mockService := new(MockLoanService)
	mockPublisher := new(MockPublisher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mockService, mockPublisher, batch.NewPaymentReminderJob(mockService, mockPublisher, windowDays, logger)
}

func TestPaymentReminderJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes reminders inside window", func(t *testing.T) {
		mockService, mockPublisher, job := newReminderJob(t, 7)

		loans := []loan.Loan{
			{ID: 1, Name: "Car loan"},
			{ID: 2, Name: "Mortgage"},
		}
		mockService.On("ListLoans", ctx).Return(loans, nil)
		mockService.On("GetSchedule", ctx, int64(1)).Return(scheduleWithNextPayment(4, time.Now().AddDate(0, 0, 3)), nil)
		mockService.On("GetSchedule", ctx, int64(2)).Return(scheduleWithNextPayment(10, time.Now().AddDate(0, 0, 30)), nil)

		mockPublisher.On("PublishPaymentUpcoming", ctx, mock.MatchedBy(func(e event.PaymentUpcomingEvent) bool {
			return e.LoanID == 1 && e.LoanName == "Car loan" && e.PeriodNumber == 4 && e.Amount == "612.39"
		})).Return(nil).Once()

		err := job.Run(ctx)
		assert.NoError(t, err)

		mockService.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("skips fully paid loans", func(t *testing.T) {
		mockService, mockPublisher, job := newReminderJob(t, 7)

		mockService.On("ListLoans", ctx).Return([]loan.Loan{{ID: 1, Name: "Car loan"}}, nil)
		mockService.On("GetSchedule", ctx, int64(1)).Return(&schedule.Result{}, nil)

		err := job.Run(ctx)
		assert.NoError(t, err)

		mockPublisher.AssertNotCalled(t, "PublishPaymentUpcoming", mock.Anything, mock.Anything)
	})

	t.Run("handles list error", func(t *testing.T) {
		mockService, _, job := newReminderJob(t, 7)

		mockService.On("ListLoans", ctx).Return(nil, errors.New("connection refused"))

		err := job.Run(ctx)
		assert.Error(t, err)
	})

	t.Run("counts publish failures", func(t *testing.T) {
		mockService, mockPublisher, job := newReminderJob(t, 7)

		mockService.On("ListLoans", ctx).Return([]loan.Loan{{ID: 1, Name: "Car loan"}}, nil)
		mockService.On("GetSchedule", ctx, int64(1)).Return(scheduleWithNextPayment(4, time.Now().AddDate(0, 0, 2)), nil)
		mockPublisher.On("PublishPaymentUpcoming", ctx, mock.Anything).Return(errors.New("broker unavailable"))

		err := job.Run(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "1 errors")
	})

	t.Run("handles no loans", func(t *testing.T) {
		mockService, _, job := newReminderJob(t, 7)

		mockService.On("ListLoans", ctx).Return([]loan.Loan{}, nil)

		err := job.Run(ctx)
		assert.NoError(t, err)
	})
}
