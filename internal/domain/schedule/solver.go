package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/pkg/apperrors"
)

const solverMaxIterations = 100

// PayoffSolution is the minimum fixed repayment meeting a payoff target,
// with the resulting schedule's headline numbers.
type PayoffSolution struct {
	RequiredRepayment decimal.Decimal
	TotalInterest     decimal.Decimal
	ProjectedCost     decimal.Decimal
	NumRepayments     int
	PayoffDate        time.Time
}

// SolvePayoffTarget finds the smallest fixed repayment (to the cent) whose
// schedule pays the loan off on or before targetDate.
//
// Payoff date is monotonically non-increasing in the repayment amount, so a
// bisection between the interest-only floor (which never pays off) and a
// trivially sufficient ceiling converges in O(log) full-schedule runs.
// Returns apperrors.ErrTargetUnreachable when no candidate inside the bounds
// meets the target, e.g. a target before the first payable period.
func SolvePayoffTarget(in Input, targetDate time.Time) (*PayoffSolution, error) {
	return solvePayoffTarget(in, targetDate, -1)
}

// solvePayoffTarget optionally varies rate change adjustRateIdx's adjusted
// repayment instead of the base fixed repayment; the rate-change preview
// uses that mode to re-amortize from the change date while earlier periods
// keep the existing payment.
func solvePayoffTarget(in Input, targetDate time.Time, adjustRateIdx int) (*PayoffSolution, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if targetDate.IsZero() {
		return nil, apperrors.NewValidationError("target_date", "must be set")
	}
	ppy, err := in.Terms.Frequency.PeriodsPerYear()
	if err != nil {
		return nil, err
	}
	if adjustRateIdx >= len(in.RateChanges) {
		return nil, fmt.Errorf("%w: rate change index %d out of range", apperrors.ErrInvalidArgument, adjustRateIdx)
	}

	interestFloor := in.Terms.Principal.Mul(in.Terms.AnnualRate).Div(decimal.NewFromInt(int64(ppy)))
	low := interestFloor.Add(cent)
	high := in.Terms.Principal.Mul(decimal.NewFromInt(2))
	two := decimal.NewFromInt(2)

	var best *PayoffSolution
	for iter := 0; iter < solverMaxIterations; iter++ {
		mid := low.Add(high).DivRound(two, 2)

		trial := in
		if adjustRateIdx >= 0 {
			rcs := make([]RateChange, len(in.RateChanges))
			copy(rcs, in.RateChanges)
			adjusted := mid
			rcs[adjustRateIdx].AdjustedRepayment = &adjusted
			trial.RateChanges = rcs
		} else {
			fixed := mid
			trial.Terms.FixedRepayment = &fixed
		}

		result, err := Generate(trial)
		if err != nil {
			return nil, err
		}
		if len(result.Rows) == 0 {
			break
		}

		if !result.Summary.PayoffDate.After(targetDate) && result.Converged() {
			best = &PayoffSolution{
				RequiredRepayment: mid,
				TotalInterest:     result.Summary.TotalInterest,
				ProjectedCost:     result.Summary.ProjectedCost,
				NumRepayments:     result.Summary.TotalRepayments,
				PayoffDate:        result.Summary.PayoffDate,
			}
			high = mid.Sub(cent)
		} else {
			low = mid.Add(cent)
		}
		if high.LessThan(low) {
			break
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: target %s may be too soon", apperrors.ErrTargetUnreachable, targetDate.Format(time.DateOnly))
	}
	return best, nil
}
