package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Warning messages reported on a schedule that never reaches a zero balance.
// The partial schedule up to the period cap is still returned.
const (
	warnNegativeAmortization = "repayment does not cover interest; the loan will not be paid off"
	warnPeriodCapFormat      = "schedule exceeded %d periods without reaching a zero balance"
)

// Generate produces the full amortization schedule for a loan snapshot.
//
// Each period the engine resolves the effective rate and nominal repayment
// from the timelines, recomputes the annuity payment over the remaining term
// on the current balance (the re-amortization a lender performs after a rate
// reset, unless an explicit repayment pins the amount), folds in any extra
// repayments dated inside the period window, and clamps the final period so
// the balance never goes negative.
//
// Invalid input returns an error with nothing computed. A schedule that
// cannot converge inside the period cap returns the partial rows with
// Summary.Warning set; that is a reported condition, not an error.
func Generate(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ppy, err := in.Terms.Frequency.PeriodsPerYear()
	if err != nil {
		return nil, err
	}
	tl := newTimeline(in, ppy)
	paid := in.Paid
	if paid == nil {
		paid = PaidSet{}
	}

	terms := in.Terms
	balance := terms.Principal.Round(2)
	cap := periodCap(terms.LoanTerm)
	ppyDec := decimal.NewFromInt(int64(ppy))

	var rows []Row
	totalInterest := zero
	projectedCost := zero
	closed := false

	for i := 1; i <= cap; i++ {
		if balance.LessThan(cent) {
			closed = true
			break
		}

		paymentDate := terms.Frequency.AddPeriods(terms.StartDate, i)
		prevDate := terms.StartDate
		if i > 1 {
			prevDate = terms.Frequency.AddPeriods(terms.StartDate, i-1)
		}

		interest, currentRate := tl.periodInterest(balance, prevDate, paymentDate)
		rateStart := tl.rateAt(prevDate)
		ratePerPeriod := currentRate.Div(ppyDec)
		remaining := terms.LoanTerm - (i - 1)
		if remaining < 1 {
			remaining = 1
		}

		calculated := Pmt(ratePerPeriod, remaining, balance)
		pinned := tl.repaymentAt(paymentDate)

		var actual, additional decimal.Decimal
		if pinned != nil {
			actual = *pinned
			additional = actual.Sub(calculated).Round(2)
			// Cumulative rounding drift shows up as sub-10c "additional"
			// amounts; treat those as the calculated payment itself.
			if additional.Abs().LessThan(tenCents) {
				additional = zero
				calculated = actual
			}
		} else {
			actual = calculated
			additional = zero
		}

		// Period 1's window starts a day early so an extra on the loan start
		// date is included; later windows are (prev payment, payment].
		windowStart := prevDate
		if i == 1 {
			windowStart = prevDate.AddDate(0, 0, -1)
		}
		extra := tl.extrasInWindow(windowStart, paymentDate)

		principalPart := actual.Sub(interest).Round(2)
		totalPrincipal := principalPart.Add(extra)

		if totalPrincipal.GreaterThan(balance) {
			overshoot := totalPrincipal.Sub(balance)
			if extra.IsPositive() && extra.GreaterThanOrEqual(overshoot) {
				extra = extra.Sub(overshoot).Round(2)
			} else {
				actual = interest.Add(balance).Sub(extra).Round(2)
				principalPart = actual.Sub(interest).Round(2)
				if pinned != nil {
					additional = actual.Sub(calculated).Round(2)
				} else {
					additional = zero
				}
			}
			totalPrincipal = balance
		}

		// Final-period clamp on the displayed calculated payment.
		if pinned != nil && principalPart.Add(extra).GreaterThanOrEqual(balance) {
			calculated = interest.Add(balance.Sub(extra)).Round(2)
			additional = actual.Sub(calculated).Round(2)
		}

		newBalance := balance.Sub(totalPrincipal).Round(2)
		if newBalance.LessThan(cent) {
			newBalance = zero
		}

		rows = append(rows, Row{
			Number:         i,
			Date:           paymentDate,
			OpeningBalance: balance,
			Principal:      principalPart,
			Interest:       interest,
			RateStart:      rateStart,
			Rate:           currentRate,
			CalculatedPmt:  calculated,
			Additional:     additional,
			Extra:          extra,
			ClosingBalance: newBalance,
			IsPaid:         paid[i],
		})

		totalInterest = totalInterest.Add(interest)
		projectedCost = projectedCost.Add(actual).Add(extra)
		balance = newBalance

		if !balance.IsPositive() {
			closed = true
			break
		}
	}

	warning := ""
	if !closed {
		warning = fmt.Sprintf(warnPeriodCapFormat, cap)
		if n := len(rows); n > 0 {
			last := rows[n-1]
			if !last.Principal.Add(last.Extra).IsPositive() {
				warning = warnNegativeAmortization
			}
		}
	}

	result := &Result{
		Rows:    rows,
		Summary: summarize(rows, paid, totalInterest, projectedCost, warning),
	}
	return result, nil
}

// Overlay is a hypothetical set of changes merged over a loan's persisted
// timelines for a what-if run; nothing in it is persisted. The pointer slice
// fields replace the persisted lists outright; the Additional* fields merge
// with them.
type Overlay struct {
	FixedRepayment            *decimal.Decimal
	RateChanges               *[]RateChange
	ExtraRepayments           *[]ExtraRepayment
	AdditionalRateChanges     []RateChange
	AdditionalRepaymentChange []RepaymentChange
	AdditionalExtraRepayments []ExtraRepayment
}

// Apply returns a copy of in with the overlay folded in.
func (o Overlay) Apply(in Input) Input {
	out := in
	if o.FixedRepayment != nil {
		fixed := *o.FixedRepayment
		out.Terms.FixedRepayment = &fixed
	}
	if o.RateChanges != nil {
		out.RateChanges = *o.RateChanges
	}
	if o.ExtraRepayments != nil {
		out.ExtraRepayments = *o.ExtraRepayments
	}
	out.RateChanges = append(append([]RateChange{}, out.RateChanges...), o.AdditionalRateChanges...)
	out.RepaymentChanges = append(append([]RepaymentChange{}, out.RepaymentChanges...), o.AdditionalRepaymentChange...)
	out.ExtraRepayments = append(append([]ExtraRepayment{}, out.ExtraRepayments...), o.AdditionalExtraRepayments...)
	return out
}

// GenerateWhatIf runs the engine over the loan snapshot with a hypothetical
// overlay merged on top of the persisted timelines.
func GenerateWhatIf(in Input, overlay Overlay) (*Result, error) {
	return Generate(overlay.Apply(in))
}
