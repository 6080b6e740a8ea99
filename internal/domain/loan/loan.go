package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/domain/schedule"
	"loantracker/internal/pkg/apperrors"
)

const (
	// MaxAmount bounds principals, repayments and lump sums.
	MaxAmount = 100_000_000
	// MaxLoanTerm bounds the period count (100 years of weekly payments).
	MaxLoanTerm = 1200
	// maxNoteLength bounds free-text notes on timeline records.
	maxNoteLength = 500
)

// Loan is a tracked loan with its base terms. The three change timelines
// and the paid set live in their own records; together they form the
// snapshot the schedule engine computes from.
type Loan struct {
	ID             int64
	Name           string
	Principal      decimal.Decimal
	AnnualRate     decimal.Decimal
	Frequency      schedule.Frequency
	StartDate      time.Time
	LoanTerm       int
	FixedRepayment *decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RateChange is a persisted interest-rate change on a loan.
type RateChange struct {
	ID                int64
	LoanID            int64
	EffectiveDate     time.Time
	AnnualRate        decimal.Decimal
	AdjustedRepayment *decimal.Decimal
	Note              string
	CreatedAt         time.Time
}

// RepaymentChange is a persisted nominal-repayment change on a loan.
type RepaymentChange struct {
	ID            int64
	LoanID        int64
	EffectiveDate time.Time
	Amount        decimal.Decimal
	Note          string
	CreatedAt     time.Time
}

// ExtraRepayment is a persisted one-off lump sum on a loan.
type ExtraRepayment struct {
	ID          int64
	LoanID      int64
	PaymentDate time.Time
	Amount      decimal.Decimal
	Note        string
	CreatedAt   time.Time
}

// Timelines bundles a loan's change lists and paid periods as read from
// storage.
type Timelines struct {
	RateChanges      []RateChange
	RepaymentChanges []RepaymentChange
	ExtraRepayments  []ExtraRepayment
	PaidNumbers      []int
}

// Detail is a loan with its timelines, the shape the API returns for a
// single loan.
type Detail struct {
	Loan
	Timelines
}

// NewLoan validates and constructs a loan ready for persistence.
func NewLoan(name string, principal, annualRate decimal.Decimal, frequency schedule.Frequency, startDate time.Time, loanTerm int, fixedRepayment *decimal.Decimal) (*Loan, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name", "must not be empty")
	}
	if !principal.IsPositive() || principal.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return nil, apperrors.NewValidationError("principal", fmt.Sprintf("must be between 0 and %d", MaxAmount))
	}
	if annualRate.IsNegative() {
		return nil, apperrors.NewValidationError("annual_rate", "must not be negative")
	}
	if !frequency.Valid() {
		return nil, apperrors.NewValidationError("frequency", "must be weekly, fortnightly or monthly")
	}
	if startDate.IsZero() {
		return nil, apperrors.NewValidationError("start_date", "must be set")
	}
	if loanTerm <= 0 || loanTerm > MaxLoanTerm {
		return nil, apperrors.NewValidationError("loan_term", fmt.Sprintf("must be between 1 and %d", MaxLoanTerm))
	}
	if fixedRepayment != nil && !fixedRepayment.IsPositive() {
		return nil, apperrors.NewValidationError("fixed_repayment", "must be greater than zero when set")
	}

	return &Loan{
		Name:           name,
		Principal:      principal.Round(2),
		AnnualRate:     annualRate,
		Frequency:      frequency,
		StartDate:      startDate,
		LoanTerm:       loanTerm,
		FixedRepayment: fixedRepayment,
	}, nil
}

// EngineInput assembles the schedule engine's snapshot from a loan and its
// timelines.
func EngineInput(l *Loan, tls *Timelines) schedule.Input {
	in := schedule.Input{
		Terms: schedule.LoanTerms{
			Principal:      l.Principal,
			AnnualRate:     l.AnnualRate,
			Frequency:      l.Frequency,
			StartDate:      l.StartDate,
			LoanTerm:       l.LoanTerm,
			FixedRepayment: l.FixedRepayment,
		},
		Paid: schedule.NewPaidSet(tls.PaidNumbers...),
	}
	for _, rc := range tls.RateChanges {
		in.RateChanges = append(in.RateChanges, schedule.RateChange{
			EffectiveDate:     rc.EffectiveDate,
			AnnualRate:        rc.AnnualRate,
			AdjustedRepayment: rc.AdjustedRepayment,
			Note:              rc.Note,
		})
	}
	for _, rpc := range tls.RepaymentChanges {
		in.RepaymentChanges = append(in.RepaymentChanges, schedule.RepaymentChange{
			EffectiveDate: rpc.EffectiveDate,
			Amount:        rpc.Amount,
			Note:          rpc.Note,
		})
	}
	for _, er := range tls.ExtraRepayments {
		in.ExtraRepayments = append(in.ExtraRepayments, schedule.ExtraRepayment{
			PaymentDate: er.PaymentDate,
			Amount:      er.Amount,
			Note:        er.Note,
		})
	}
	return in
}

// farFutureLimit rejects dates past a century out, the same sanity bound
// the spreadsheet's owners used.
func farFutureLimit() time.Time {
	return time.Date(time.Now().Year()+100, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func validateChangeDate(field string, date, loanStart time.Time) error {
	if date.IsZero() {
		return apperrors.NewValidationError(field, "must be set")
	}
	if date.Before(loanStart) {
		return apperrors.NewValidationError(field, "cannot be before the loan start date")
	}
	if date.After(farFutureLimit()) {
		return apperrors.NewValidationError(field, "is unreasonably far in the future")
	}
	return nil
}

func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return apperrors.NewValidationError(field, fmt.Sprintf("must be between 0 and %d", MaxAmount))
	}
	return nil
}

func validateNote(note string) error {
	if len(note) > maxNoteLength {
		return apperrors.NewValidationError("note", fmt.Sprintf("must be at most %d characters", maxNoteLength))
	}
	return nil
}
