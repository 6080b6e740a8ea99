package schedule

import "github.com/shopspring/decimal"

// Pmt computes the fixed periodic payment that fully amortizes presentValue
// over numPeriods at ratePerPeriod, like the spreadsheet PMT function but
// returning a positive amount for a positive balance.
//
// A periodic rate below 1e-12 degenerates to straight-line division. A
// non-positive period count returns the balance unchanged; the generator
// never asks for that, it only matters to direct callers probing edge
// inputs.
func Pmt(ratePerPeriod decimal.Decimal, numPeriods int, presentValue decimal.Decimal) decimal.Decimal {
	if numPeriods <= 0 {
		return presentValue
	}
	if ratePerPeriod.Abs().LessThan(rateEpsilon) {
		return presentValue.DivRound(decimal.NewFromInt(int64(numPeriods)), 2)
	}
	if numPeriods == 1 {
		return presentValue.Mul(one.Add(ratePerPeriod)).Round(2)
	}
	growth := one.Add(ratePerPeriod).Pow(decimal.NewFromInt(int64(numPeriods)))
	payment := presentValue.Mul(ratePerPeriod).Mul(growth).Div(growth.Sub(one))
	return payment.Round(2)
}
