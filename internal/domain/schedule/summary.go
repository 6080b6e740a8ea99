package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// summarize reduces generated rows into the schedule summary. Progress
// numbers (payments made, total paid, remaining balance, next payment)
// reflect the paid set; totals and the payoff date describe the full
// projection.
func summarize(rows []Row, paid PaidSet, totalInterest, projectedCost decimal.Decimal, warning string) Summary {
	s := Summary{
		TotalRepayments: len(rows),
		TotalInterest:   totalInterest.Round(2),
		TotalPaid:       zero,
		ProjectedCost:   projectedCost.Round(2),
		PaymentsMade:    len(paid),
		Warning:         warning,
	}

	remaining := zero
	for _, row := range rows {
		if row.IsPaid {
			s.TotalPaid = s.TotalPaid.Add(row.Payment()).Add(row.Extra)
			continue
		}
		if s.NextPayment == nil {
			s.NextPayment = &NextPayment{
				Number: row.Number,
				Date:   row.Date,
				Amount: row.Principal.Add(row.Interest).Add(row.Additional).Round(2),
			}
			remaining = row.OpeningBalance
		}
	}
	s.TotalPaid = s.TotalPaid.Round(2)

	if remaining.IsZero() && len(rows) > 0 {
		// Everything paid (or nothing unpaid found): the balance left is the
		// final row's closing balance.
		remaining = rows[len(rows)-1].ClosingBalance
	}
	s.RemainingBalance = remaining

	if len(rows) > 0 {
		s.PayoffDate = rows[len(rows)-1].Date
	} else {
		s.PayoffDate = time.Time{}
	}

	if s.TotalRepayments > 0 {
		made := decimal.NewFromInt(int64(s.PaymentsMade))
		total := decimal.NewFromInt(int64(s.TotalRepayments))
		s.ProgressPct = int(made.Mul(hundred).DivRound(total, 0).IntPart())
	}

	return s
}
