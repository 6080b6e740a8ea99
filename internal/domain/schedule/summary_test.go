package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryProgress(t *testing.T) {
	paid := NewPaidSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	result, err := Generate(Input{Terms: baseTerms(), Paid: paid})
	require.NoError(t, err)
	s := result.Summary

	t.Run("payments made and progress", func(t *testing.T) {
		assert.Equal(t, 10, s.PaymentsMade)
		assert.Equal(t, 19, s.ProgressPct) // 10/52 of the way through
	})

	t.Run("next payment is the first unpaid row", func(t *testing.T) {
		require.NotNil(t, s.NextPayment)
		assert.Equal(t, 11, s.NextPayment.Number)
		assert.Equal(t, result.Rows[10].Date, s.NextPayment.Date)
		want := result.Rows[10].Principal.Add(result.Rows[10].Interest).Round(2)
		assert.True(t, s.NextPayment.Amount.Equal(want), "got %s want %s", s.NextPayment.Amount, want)
	})

	t.Run("remaining balance is the next unpaid row's opening balance", func(t *testing.T) {
		assert.True(t, s.RemainingBalance.Equal(result.Rows[10].OpeningBalance))
	})

	t.Run("total paid covers paid rows only", func(t *testing.T) {
		want := zero
		for _, row := range result.Rows[:10] {
			want = want.Add(row.Principal).Add(row.Interest).Add(row.Extra)
		}
		assert.True(t, s.TotalPaid.Equal(want.Round(2)), "got %s want %s", s.TotalPaid, want)
	})

	t.Run("is_paid stamps the marked rows", func(t *testing.T) {
		for _, row := range result.Rows {
			assert.Equal(t, paid[row.Number], row.IsPaid, "row %d", row.Number)
		}
	})
}

func TestSummaryAllPaid(t *testing.T) {
	nums := make([]int, 52)
	for i := range nums {
		nums[i] = i + 1
	}
	result, err := Generate(Input{Terms: baseTerms(), Paid: NewPaidSet(nums...)})
	require.NoError(t, err)
	s := result.Summary

	assert.Nil(t, s.NextPayment)
	assert.Equal(t, 100, s.ProgressPct)
	assert.True(t, s.RemainingBalance.IsZero())
	assert.True(t, s.TotalPaid.Equal(s.ProjectedCost), "all paid means total paid equals the projection")
}

func TestSummaryNothingPaid(t *testing.T) {
	result, err := Generate(Input{Terms: baseTerms()})
	require.NoError(t, err)
	s := result.Summary

	assert.Equal(t, 0, s.PaymentsMade)
	assert.Equal(t, 0, s.ProgressPct)
	assert.True(t, s.TotalPaid.IsZero())
	require.NotNil(t, s.NextPayment)
	assert.Equal(t, 1, s.NextPayment.Number)
	assert.True(t, s.RemainingBalance.Equal(dec("30050.00")))
}
