// Package schedule implements the amortization engine: a stateless, pure
// transform from a loan's terms plus its change timelines to a full
// period-by-period repayment schedule, summary statistics, payoff-target
// solving and what-if previews.
//
// All monetary values are two-decimal fixed-point decimals; every
// intermediate amount is rounded immediately after computation so repeated
// runs are bit-reproducible and auditable against a spreadsheet. Rates are
// fractions (0.0575 means 5.75% p.a.). The engine never touches storage:
// callers pass a snapshot of the loan and its timelines by value.
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/pkg/apperrors"
)

// Frequency is the repayment cadence of a loan.
type Frequency string

const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyFortnightly Frequency = "fortnightly"
	FrequencyMonthly     Frequency = "monthly"
)

// PeriodsPerYear returns the number of repayment periods in a year, or an
// error for an unknown frequency.
func (f Frequency) PeriodsPerYear() (int, error) {
	switch f {
	case FrequencyWeekly:
		return 52, nil
	case FrequencyFortnightly:
		return 26, nil
	case FrequencyMonthly:
		return 12, nil
	}
	return 0, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrInvalidArgument, string(f))
}

// Valid reports whether f is one of the supported cadences.
func (f Frequency) Valid() bool {
	_, err := f.PeriodsPerYear()
	return err == nil
}

// LoanTerms is the immutable base configuration of a loan for one
// computation. FixedRepayment nil means the nominal payment is derived from
// the annuity formula each period.
type LoanTerms struct {
	Principal      decimal.Decimal
	AnnualRate     decimal.Decimal
	Frequency      Frequency
	StartDate      time.Time
	LoanTerm       int
	FixedRepayment *decimal.Decimal
}

// RateChange switches the annual rate from EffectiveDate (inclusive).
// AdjustedRepayment, when set, pins the nominal repayment from the same date
// instead of letting the engine re-amortize.
type RateChange struct {
	EffectiveDate     time.Time
	AnnualRate        decimal.Decimal
	AdjustedRepayment *decimal.Decimal
	Note              string
}

// RepaymentChange sets a new nominal repayment from EffectiveDate
// (inclusive).
type RepaymentChange struct {
	EffectiveDate time.Time
	Amount        decimal.Decimal
	Note          string
}

// ExtraRepayment is a one-off lump sum applied as additional principal in
// the period whose payment window contains PaymentDate.
type ExtraRepayment struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
	Note        string
}

// PaidSet marks period numbers the user has ticked off as paid.
type PaidSet map[int]bool

// NewPaidSet builds a PaidSet from period numbers.
func NewPaidSet(numbers ...int) PaidSet {
	s := make(PaidSet, len(numbers))
	for _, n := range numbers {
		s[n] = true
	}
	return s
}

// Input is the full snapshot the engine computes from.
type Input struct {
	Terms            LoanTerms
	RateChanges      []RateChange
	RepaymentChanges []RepaymentChange
	ExtraRepayments  []ExtraRepayment
	Paid             PaidSet
}

// Row is one generated repayment period.
type Row struct {
	Number         int
	Date           time.Time
	OpeningBalance decimal.Decimal
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	RateStart      decimal.Decimal // annual rate in force when the period opened
	Rate           decimal.Decimal // annual rate used for the period's interest
	CalculatedPmt  decimal.Decimal
	Additional     decimal.Decimal // actual payment minus calculated payment
	Extra          decimal.Decimal
	ClosingBalance decimal.Decimal
	IsPaid         bool
}

// Payment is the scheduled amount for the row: principal plus interest plus
// any additional above the calculated payment.
func (r Row) Payment() decimal.Decimal {
	return r.Principal.Add(r.Interest).Round(2)
}

// NextPayment identifies the first unpaid period of a schedule.
type NextPayment struct {
	Number int
	Date   time.Time
	Amount decimal.Decimal
}

// Summary is the reduction of a generated schedule. TotalPaid and
// RemainingBalance reflect actual progress (paid periods only);
// TotalRepayments, TotalInterest, ProjectedCost and PayoffDate describe the
// full projection.
type Summary struct {
	TotalRepayments  int
	TotalInterest    decimal.Decimal
	TotalPaid        decimal.Decimal
	ProjectedCost    decimal.Decimal
	PayoffDate       time.Time
	RemainingBalance decimal.Decimal
	PaymentsMade     int
	ProgressPct      int
	NextPayment      *NextPayment
	Warning          string
}

// Result is a generated schedule with its summary.
type Result struct {
	Rows    []Row
	Summary Summary
}

// Converged reports whether the schedule reached a zero balance inside the
// period cap.
func (r *Result) Converged() bool {
	return r.Summary.Warning == ""
}

var (
	zero         = decimal.Zero
	one          = decimal.NewFromInt(1)
	cent         = decimal.New(1, -2)  // 0.01
	tenCents     = decimal.New(1, -1)  // 0.10
	rateEpsilon  = decimal.New(1, -12) // below this a periodic rate counts as zero
	daysPerYear  = decimal.NewFromInt(365)
	hundred      = decimal.NewFromInt(100)
	minIteration = 2000
)

// periodCap bounds schedule generation so negative amortization cannot loop
// forever. Misconfigured inputs hitting the cap are reported, not fatal.
func periodCap(loanTerm int) int {
	if c := loanTerm * 2; c > minIteration {
		return c
	}
	return minIteration
}

func (in Input) validate() error {
	t := in.Terms
	if !t.Principal.IsPositive() {
		return apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if t.AnnualRate.IsNegative() {
		return apperrors.NewValidationError("annual_rate", "must not be negative")
	}
	if !t.Frequency.Valid() {
		return apperrors.NewValidationError("frequency", fmt.Sprintf("unknown frequency %q", string(t.Frequency)))
	}
	if t.StartDate.IsZero() {
		return apperrors.NewValidationError("start_date", "must be set")
	}
	if t.LoanTerm <= 0 {
		return apperrors.NewValidationError("loan_term", "must be greater than zero")
	}
	for _, er := range in.ExtraRepayments {
		if !er.Amount.IsPositive() {
			return apperrors.NewValidationError("extra_repayments", "amount must be greater than zero")
		}
	}
	return nil
}
