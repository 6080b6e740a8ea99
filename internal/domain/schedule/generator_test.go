package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseTerms is the loan the source spreadsheet tracked: $30,050 at 5.75%
// p.a., fortnightly over 52 periods, $612.39 fixed repayment.
func baseTerms() LoanTerms {
	fixed := dec("612.39")
	return LoanTerms{
		Principal:      dec("30050.00"),
		AnnualRate:     dec("0.0575"),
		Frequency:      FrequencyFortnightly,
		StartDate:      Date(2026, time.February, 20),
		LoanTerm:       52,
		FixedRepayment: &fixed,
	}
}

func assertNear(t *testing.T, expected string, got decimal.Decimal, tolerance string) {
	t.Helper()
	diff := got.Sub(dec(expected)).Abs()
	assert.True(t, diff.LessThanOrEqual(dec(tolerance)), "expected %s ± %s, got %s", expected, tolerance, got)
}

func TestGenerateAgainstSpreadsheet(t *testing.T) {
	result, err := Generate(Input{Terms: baseTerms()})
	require.NoError(t, err)
	require.Len(t, result.Rows, 52)

	t.Run("row 1", func(t *testing.T) {
		row := result.Rows[0]
		assert.Equal(t, 1, row.Number)
		assert.True(t, row.OpeningBalance.Equal(dec("30050.00")))
		assert.True(t, row.Interest.Equal(dec("66.46")), "got %s", row.Interest)
		assert.True(t, row.CalculatedPmt.Equal(dec("612.39")))
		assertNear(t, "29504.07", row.ClosingBalance, "0.01")
	})

	t.Run("row 2", func(t *testing.T) {
		row := result.Rows[1]
		assertNear(t, "65.25", row.Interest, "0.01")
		assertNear(t, "28956.93", row.ClosingBalance, "0.01")
	})

	t.Run("row 26", func(t *testing.T) {
		row := result.Rows[25]
		assertNear(t, "16033.25", row.OpeningBalance, "0.05")
		assertNear(t, "35.46", row.Interest, "0.05")
		assertNear(t, "15456.32", row.ClosingBalance, "0.05")
	})

	t.Run("final row clamps to a smaller payment", func(t *testing.T) {
		row := result.Rows[51]
		assert.Equal(t, 52, row.Number)
		assertNear(t, "610.92", row.OpeningBalance, "0.05")
		assertNear(t, "1.35", row.Interest, "0.05")
		assert.True(t, row.CalculatedPmt.LessThanOrEqual(dec("612.39")))
		assert.True(t, row.ClosingBalance.IsZero(), "got %s", row.ClosingBalance)
	})

	t.Run("summary totals", func(t *testing.T) {
		s := result.Summary
		assert.Equal(t, 52, s.TotalRepayments)
		assertNear(t, "1794.16", s.TotalInterest, "0.05")
		assertNear(t, "31844.16", s.ProjectedCost, "0.10")
		assert.Equal(t, Date(2028, time.February, 18), s.PayoffDate)
		assert.Empty(t, s.Warning)
	})
}

func TestGenerateInvariants(t *testing.T) {
	t.Run("principal sums to the loan amount and the balance closes at zero", func(t *testing.T) {
		terms := baseTerms()
		terms.FixedRepayment = nil
		result, err := Generate(Input{Terms: terms})
		require.NoError(t, err)

		total := decimal.Zero
		prevClosing := terms.Principal
		for _, row := range result.Rows {
			total = total.Add(row.Principal).Add(row.Extra)
			assert.True(t, row.OpeningBalance.Equal(prevClosing))
			assert.True(t, row.ClosingBalance.LessThanOrEqual(row.OpeningBalance), "balance must not grow at row %d", row.Number)
			assert.False(t, row.ClosingBalance.IsNegative())
			prevClosing = row.ClosingBalance
		}
		assert.True(t, total.Equal(terms.Principal), "principal sum %s != %s", total, terms.Principal)
		assert.True(t, result.Rows[len(result.Rows)-1].ClosingBalance.IsZero())
	})

	t.Run("interest per row is opening balance times the periodic rate", func(t *testing.T) {
		result, err := Generate(Input{Terms: baseTerms()})
		require.NoError(t, err)
		ppy := decimal.NewFromInt(26)
		for _, row := range result.Rows {
			want := row.OpeningBalance.Mul(row.Rate).Div(ppy).Round(2)
			assert.True(t, row.Interest.Equal(want), "row %d: %s != %s", row.Number, row.Interest, want)
		}
	})
}

func TestGenerateEdgeCases(t *testing.T) {
	t.Run("zero rate pays equal installments with no interest", func(t *testing.T) {
		result, err := Generate(Input{Terms: LoanTerms{
			Principal:  dec("1000.00"),
			AnnualRate: decimal.Zero,
			Frequency:  FrequencyMonthly,
			StartDate:  Date(2026, time.January, 1),
			LoanTerm:   10,
		}})
		require.NoError(t, err)
		assert.Equal(t, 10, result.Summary.TotalRepayments)
		assert.True(t, result.Summary.TotalInterest.IsZero())
		for _, row := range result.Rows {
			assert.True(t, row.Interest.IsZero())
		}
	})

	t.Run("repayment below interest reports non-convergence with partial rows", func(t *testing.T) {
		terms := baseTerms()
		fixed := dec("50.00") // interest alone is ~$66 per period
		terms.FixedRepayment = &fixed
		result, err := Generate(Input{Terms: terms})
		require.NoError(t, err)
		assert.False(t, result.Converged())
		assert.Equal(t, warnNegativeAmortization, result.Summary.Warning)
		assert.Len(t, result.Rows, periodCap(terms.LoanTerm))
	})

	t.Run("overpaying closes early", func(t *testing.T) {
		terms := baseTerms()
		fixed := dec("1000.00")
		terms.FixedRepayment = &fixed
		result, err := Generate(Input{Terms: terms})
		require.NoError(t, err)
		assert.Less(t, result.Summary.TotalRepayments, 52)
		assert.True(t, result.Rows[len(result.Rows)-1].ClosingBalance.IsZero())
	})

	t.Run("extra larger than the balance is capped", func(t *testing.T) {
		result, err := Generate(Input{
			Terms: LoanTerms{
				Principal:  dec("1000.00"),
				AnnualRate: dec("0.05"),
				Frequency:  FrequencyMonthly,
				StartDate:  Date(2026, time.January, 1),
				LoanTerm:   12,
			},
			ExtraRepayments: []ExtraRepayment{{PaymentDate: Date(2026, time.February, 1), Amount: dec("50000.00")}},
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Summary.TotalRepayments, 2)
		assert.True(t, result.Rows[len(result.Rows)-1].ClosingBalance.IsZero())
	})

	t.Run("no fixed repayment keeps additional at zero", func(t *testing.T) {
		result, err := Generate(Input{Terms: LoanTerms{
			Principal:  dec("10000.00"),
			AnnualRate: dec("0.06"),
			Frequency:  FrequencyMonthly,
			StartDate:  Date(2026, time.January, 1),
			LoanTerm:   12,
		}})
		require.NoError(t, err)
		assert.Equal(t, 12, result.Summary.TotalRepayments)
		for _, row := range result.Rows {
			assert.True(t, row.Additional.IsZero())
		}
	})
}

func TestGenerateRateChanges(t *testing.T) {
	t.Run("higher rate with no pinned repayment increases total interest", func(t *testing.T) {
		terms := baseTerms()
		terms.FixedRepayment = nil
		baseline, err := Generate(Input{Terms: terms})
		require.NoError(t, err)

		// Effective around period 27 of the fortnightly schedule.
		changed, err := Generate(Input{
			Terms:       terms,
			RateChanges: []RateChange{{EffectiveDate: Date(2027, time.February, 26), AnnualRate: dec("0.07")}},
		})
		require.NoError(t, err)

		assert.True(t, changed.Summary.TotalInterest.GreaterThan(baseline.Summary.TotalInterest))
		// Pre-change rows are untouched.
		assert.True(t, changed.Rows[0].Interest.Equal(baseline.Rows[0].Interest))
		// Post-change periods re-amortize to a larger calculated payment.
		assert.True(t, changed.Rows[27].CalculatedPmt.GreaterThan(baseline.Rows[27].CalculatedPmt))
	})

	t.Run("rate change before loan start applies from period 1", func(t *testing.T) {
		terms := baseTerms()
		terms.FixedRepayment = nil
		result, err := Generate(Input{
			Terms:       terms,
			RateChanges: []RateChange{{EffectiveDate: Date(2020, time.January, 1), AnnualRate: dec("0.08")}},
		})
		require.NoError(t, err)
		assert.True(t, result.Rows[0].Rate.Equal(dec("0.08")))
		assert.True(t, result.Rows[0].RateStart.Equal(dec("0.08")))
	})

	t.Run("mid-period change pro-rates interest daily", func(t *testing.T) {
		// Change lands between period 1 (2026-03-06) and period 2 dates.
		result, err := Generate(Input{
			Terms:       baseTerms(),
			RateChanges: []RateChange{{EffectiveDate: Date(2026, time.March, 13), AnnualRate: dec("0.065")}},
		})
		require.NoError(t, err)

		row := result.Rows[1]
		// 7 days at 5.75% plus 7 days at 6.5% on the opening balance.
		open := row.OpeningBalance
		want := open.Mul(dec("0.0575")).Div(daysPerYear).Mul(decimal.NewFromInt(7)).
			Add(open.Mul(dec("0.065")).Div(daysPerYear).Mul(decimal.NewFromInt(7))).Round(2)
		assert.True(t, row.Interest.Equal(want), "got %s want %s", row.Interest, want)
		assert.True(t, row.RateStart.Equal(dec("0.0575")))
		assert.True(t, row.Rate.Equal(dec("0.065")))
	})

	t.Run("adjusted repayment pins the payment instead of re-amortizing", func(t *testing.T) {
		terms := baseTerms()
		adjusted := dec("650.00")
		result, err := Generate(Input{
			Terms: terms,
			RateChanges: []RateChange{{
				EffectiveDate:     Date(2026, time.August, 1),
				AnnualRate:        dec("0.07"),
				AdjustedRepayment: &adjusted,
			}},
		})
		require.NoError(t, err)

		for _, row := range result.Rows {
			if row.Date.After(Date(2026, time.August, 1)) && row.Number < result.Summary.TotalRepayments {
				assert.True(t, row.Principal.Add(row.Interest).Equal(dec("650.00")),
					"row %d pays %s", row.Number, row.Principal.Add(row.Interest))
			}
		}
	})
}

func TestGenerateExtraRepayments(t *testing.T) {
	terms := baseTerms()
	baseline, err := Generate(Input{Terms: terms})
	require.NoError(t, err)

	period10 := FrequencyFortnightly.AddPeriods(terms.StartDate, 10)
	withExtra, err := Generate(Input{
		Terms:           terms,
		ExtraRepayments: []ExtraRepayment{{PaymentDate: period10, Amount: dec("5000.00")}},
	})
	require.NoError(t, err)

	t.Run("closing balance drops by exactly the lump sum", func(t *testing.T) {
		want := baseline.Rows[9].ClosingBalance.Sub(dec("5000.00"))
		assert.True(t, withExtra.Rows[9].ClosingBalance.Equal(want),
			"got %s want %s", withExtra.Rows[9].ClosingBalance, want)
		assert.True(t, withExtra.Rows[9].Extra.Equal(dec("5000.00")))
	})

	t.Run("schedule never lengthens", func(t *testing.T) {
		assert.LessOrEqual(t, withExtra.Summary.TotalRepayments, baseline.Summary.TotalRepayments)
		assert.Less(t, withExtra.Summary.TotalRepayments, baseline.Summary.TotalRepayments)
		assert.True(t, withExtra.Summary.TotalInterest.LessThan(baseline.Summary.TotalInterest))
	})

	t.Run("extra on the loan start date lands in period 1", func(t *testing.T) {
		result, err := Generate(Input{
			Terms:           terms,
			ExtraRepayments: []ExtraRepayment{{PaymentDate: terms.StartDate, Amount: dec("1000.00")}},
		})
		require.NoError(t, err)
		assert.True(t, result.Rows[0].Extra.Equal(dec("1000.00")))
	})
}

func TestGenerateValidation(t *testing.T) {
	valid := Input{Terms: baseTerms()}

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"non-positive principal", func(in *Input) { in.Terms.Principal = decimal.Zero }},
		{"negative rate", func(in *Input) { in.Terms.AnnualRate = dec("-0.01") }},
		{"unknown frequency", func(in *Input) { in.Terms.Frequency = "daily" }},
		{"zero start date", func(in *Input) { in.Terms.StartDate = time.Time{} }},
		{"non-positive term", func(in *Input) { in.Terms.LoanTerm = 0 }},
		{"non-positive extra amount", func(in *Input) {
			in.ExtraRepayments = []ExtraRepayment{{PaymentDate: Date(2026, time.March, 1), Amount: decimal.Zero}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			result, err := Generate(in)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestGenerateWhatIf(t *testing.T) {
	terms := baseTerms()
	in := Input{Terms: terms}

	t.Run("overlay does not disturb the base input", func(t *testing.T) {
		fixed := dec("800.00")
		result, err := GenerateWhatIf(in, Overlay{FixedRepayment: &fixed})
		require.NoError(t, err)
		assert.Less(t, result.Summary.TotalRepayments, 52)
		assert.Nil(t, in.RateChanges)
		assert.True(t, in.Terms.FixedRepayment.Equal(dec("612.39")))
	})

	t.Run("additional changes merge with persisted timelines", func(t *testing.T) {
		persisted := Input{
			Terms:           terms,
			ExtraRepayments: []ExtraRepayment{{PaymentDate: Date(2026, time.June, 1), Amount: dec("1000.00")}},
		}
		result, err := GenerateWhatIf(persisted, Overlay{
			AdditionalExtraRepayments: []ExtraRepayment{{PaymentDate: Date(2026, time.September, 1), Amount: dec("2000.00")}},
		})
		require.NoError(t, err)

		totalExtra := decimal.Zero
		for _, row := range result.Rows {
			totalExtra = totalExtra.Add(row.Extra)
		}
		assert.True(t, totalExtra.Equal(dec("3000.00")), "got %s", totalExtra)
	})

	t.Run("replacement lists supersede persisted ones", func(t *testing.T) {
		persisted := Input{
			Terms:           terms,
			ExtraRepayments: []ExtraRepayment{{PaymentDate: Date(2026, time.June, 1), Amount: dec("1000.00")}},
		}
		empty := []ExtraRepayment{}
		result, err := GenerateWhatIf(persisted, Overlay{ExtraRepayments: &empty})
		require.NoError(t, err)
		for _, row := range result.Rows {
			assert.True(t, row.Extra.IsZero())
		}
	})
}
