package schedule

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// timeline is the merged view of a loan's change lists, pre-sorted once per
// computation. Sorting is stable so records sharing an effective date keep
// their insertion order and the later record wins.
type timeline struct {
	baseRate       decimal.Decimal
	rateChanges    []RateChange
	overrides      []repaymentOverride
	extras         []ExtraRepayment
	baseRepayment  *decimal.Decimal
	periodsPerYear decimal.Decimal
}

// repaymentOverride is a nominal-repayment pin from either source: a rate
// change carrying an adjusted repayment, or a standalone repayment change.
// The most recent override at or before a payment date wins across both
// kinds.
type repaymentOverride struct {
	effectiveDate time.Time
	amount        decimal.Decimal
}

func newTimeline(in Input, ppy int) *timeline {
	rcs := make([]RateChange, len(in.RateChanges))
	copy(rcs, in.RateChanges)
	sort.SliceStable(rcs, func(i, j int) bool {
		return rcs[i].EffectiveDate.Before(rcs[j].EffectiveDate)
	})

	var overrides []repaymentOverride
	for _, rc := range rcs {
		if rc.AdjustedRepayment != nil {
			overrides = append(overrides, repaymentOverride{rc.EffectiveDate, *rc.AdjustedRepayment})
		}
	}
	for _, rpc := range in.RepaymentChanges {
		overrides = append(overrides, repaymentOverride{rpc.EffectiveDate, rpc.Amount})
	}
	sort.SliceStable(overrides, func(i, j int) bool {
		return overrides[i].effectiveDate.Before(overrides[j].effectiveDate)
	})

	return &timeline{
		baseRate:       in.Terms.AnnualRate,
		rateChanges:    rcs,
		overrides:      overrides,
		extras:         in.ExtraRepayments,
		baseRepayment:  in.Terms.FixedRepayment,
		periodsPerYear: decimal.NewFromInt(int64(ppy)),
	}
}

// rateAt returns the annual rate in force on a date: the latest rate change
// effective on or before it, else the base rate. A change dated before the
// loan start is simply in force from period 1.
func (t *timeline) rateAt(date time.Time) decimal.Decimal {
	current := t.baseRate
	for _, rc := range t.rateChanges {
		if rc.EffectiveDate.After(date) {
			break
		}
		current = rc.AnnualRate
	}
	return current
}

// repaymentAt resolves the nominal repayment for a payment date. Returns nil
// when the loan has no fixed repayment, in which case the generator falls
// back to the calculated payment each period.
func (t *timeline) repaymentAt(date time.Time) *decimal.Decimal {
	if t.baseRepayment == nil {
		return t.baseRepayment
	}
	current := *t.baseRepayment
	for _, ov := range t.overrides {
		if ov.effectiveDate.After(date) {
			break
		}
		current = ov.amount
	}
	return &current
}

// periodInterest computes the interest accrued over (prevDate, paymentDate]
// on balance, returning the interest and the rate in force at period end.
//
// With no rate boundary strictly inside the window it uses the plain
// balance x rate / periods-per-year formula. A mid-period rate change splits
// the window into sub-intervals charged daily at actual/365, the same
// pro-rating the source spreadsheet used.
func (t *timeline) periodInterest(balance decimal.Decimal, prevDate, paymentDate time.Time) (decimal.Decimal, decimal.Decimal) {
	endRate := t.rateAt(paymentDate)

	var boundaries []time.Time
	for _, rc := range t.rateChanges {
		if rc.EffectiveDate.After(prevDate) && rc.EffectiveDate.Before(paymentDate) {
			boundaries = append(boundaries, rc.EffectiveDate)
		}
	}

	if len(boundaries) == 0 {
		return balance.Mul(endRate).Div(t.periodsPerYear).Round(2), endRate
	}

	interest := zero
	intervalStart := prevDate
	for _, boundary := range boundaries {
		days := decimal.NewFromInt(int64(daysBetween(intervalStart, boundary)))
		subRate := t.rateAt(intervalStart)
		interest = interest.Add(balance.Mul(subRate).Div(daysPerYear).Mul(days))
		intervalStart = boundary
	}
	days := decimal.NewFromInt(int64(daysBetween(intervalStart, paymentDate)))
	subRate := t.rateAt(intervalStart)
	interest = interest.Add(balance.Mul(subRate).Div(daysPerYear).Mul(days))

	return interest.Round(2), endRate
}

// extrasInWindow sums extra repayments falling in (windowStart, windowEnd].
// The generator widens period 1's window so a lump sum on the loan start
// date still lands in the first period.
func (t *timeline) extrasInWindow(windowStart, windowEnd time.Time) decimal.Decimal {
	total := zero
	for _, er := range t.extras {
		if er.PaymentDate.After(windowStart) && !er.PaymentDate.After(windowEnd) {
			total = total.Add(er.Amount)
		}
	}
	return total.Round(2)
}
