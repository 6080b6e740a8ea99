package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timelineFor(t *testing.T, in Input) *timeline {
	t.Helper()
	ppy, err := in.Terms.Frequency.PeriodsPerYear()
	require.NoError(t, err)
	return newTimeline(in, ppy)
}

func TestRateAt(t *testing.T) {
	in := Input{
		Terms: baseTerms(),
		RateChanges: []RateChange{
			{EffectiveDate: Date(2026, time.June, 1), AnnualRate: dec("0.06")},
			{EffectiveDate: Date(2026, time.September, 1), AnnualRate: dec("0.065")},
		},
	}
	tl := timelineFor(t, in)

	assert.True(t, tl.rateAt(Date(2026, time.March, 1)).Equal(dec("0.0575")), "base rate before any change")
	assert.True(t, tl.rateAt(Date(2026, time.June, 1)).Equal(dec("0.06")), "effective date is inclusive")
	assert.True(t, tl.rateAt(Date(2026, time.August, 31)).Equal(dec("0.06")))
	assert.True(t, tl.rateAt(Date(2027, time.January, 1)).Equal(dec("0.065")), "latest applicable change wins")
}

func TestRepaymentAt(t *testing.T) {
	t.Run("nil without a fixed repayment", func(t *testing.T) {
		terms := baseTerms()
		terms.FixedRepayment = nil
		tl := timelineFor(t, Input{Terms: terms})
		assert.Nil(t, tl.repaymentAt(Date(2026, time.June, 1)))
	})

	t.Run("most recent effective date wins across both change kinds", func(t *testing.T) {
		adjusted := dec("650.00")
		in := Input{
			Terms: baseTerms(),
			RateChanges: []RateChange{{
				EffectiveDate:     Date(2026, time.August, 1),
				AnnualRate:        dec("0.07"),
				AdjustedRepayment: &adjusted,
			}},
			RepaymentChanges: []RepaymentChange{{
				EffectiveDate: Date(2026, time.June, 1),
				Amount:        dec("700.00"),
			}},
		}
		tl := timelineFor(t, in)

		assert.True(t, tl.repaymentAt(Date(2026, time.May, 1)).Equal(dec("612.39")), "base until the first override")
		assert.True(t, tl.repaymentAt(Date(2026, time.July, 1)).Equal(dec("700.00")), "repayment change in force")
		// The rate change's adjusted repayment is more recent, so it
		// supersedes the earlier repayment change.
		assert.True(t, tl.repaymentAt(Date(2026, time.September, 1)).Equal(dec("650.00")))
	})

	t.Run("repayment change dated after the adjusted repayment wins", func(t *testing.T) {
		adjusted := dec("650.00")
		in := Input{
			Terms: baseTerms(),
			RateChanges: []RateChange{{
				EffectiveDate:     Date(2026, time.June, 1),
				AnnualRate:        dec("0.07"),
				AdjustedRepayment: &adjusted,
			}},
			RepaymentChanges: []RepaymentChange{{
				EffectiveDate: Date(2026, time.August, 1),
				Amount:        dec("700.00"),
			}},
		}
		tl := timelineFor(t, in)
		assert.True(t, tl.repaymentAt(Date(2026, time.September, 1)).Equal(dec("700.00")))
	})

	t.Run("same-date tie goes to the standalone repayment change", func(t *testing.T) {
		adjusted := dec("650.00")
		day := Date(2026, time.June, 1)
		in := Input{
			Terms:            baseTerms(),
			RateChanges:      []RateChange{{EffectiveDate: day, AnnualRate: dec("0.07"), AdjustedRepayment: &adjusted}},
			RepaymentChanges: []RepaymentChange{{EffectiveDate: day, Amount: dec("700.00")}},
		}
		tl := timelineFor(t, in)
		assert.True(t, tl.repaymentAt(day).Equal(dec("700.00")))
	})
}

func TestExtrasInWindow(t *testing.T) {
	in := Input{
		Terms: baseTerms(),
		ExtraRepayments: []ExtraRepayment{
			{PaymentDate: Date(2026, time.March, 1), Amount: dec("100.00")},
			{PaymentDate: Date(2026, time.March, 6), Amount: dec("200.00")},
			{PaymentDate: Date(2026, time.March, 7), Amount: dec("400.00")},
		},
	}
	tl := timelineFor(t, in)

	t.Run("start exclusive, end inclusive", func(t *testing.T) {
		got := tl.extrasInWindow(Date(2026, time.February, 20), Date(2026, time.March, 6))
		assert.True(t, got.Equal(dec("300.00")), "got %s", got)
	})

	t.Run("multiple extras in one window sum", func(t *testing.T) {
		got := tl.extrasInWindow(Date(2026, time.February, 28), Date(2026, time.March, 31))
		assert.True(t, got.Equal(dec("700.00")), "got %s", got)
	})

	t.Run("empty window", func(t *testing.T) {
		got := tl.extrasInWindow(Date(2026, time.April, 1), Date(2026, time.April, 30))
		assert.True(t, got.IsZero())
	})
}
