package schedule

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPmt(t *testing.T) {
	t.Run("matches the spreadsheet PMT function", func(t *testing.T) {
		// PMT(5.75%/26, 52, 30050) from the source spreadsheet.
		rate := dec("0.0575").Div(decimal.NewFromInt(26))
		result := Pmt(rate, 52, dec("30050.00"))
		assert.True(t, result.Equal(dec("612.39")), "got %s", result)
	})

	t.Run("zero rate degenerates to straight-line division", func(t *testing.T) {
		result := Pmt(decimal.Zero, 10, dec("1000.00"))
		assert.True(t, result.Equal(dec("100.00")), "got %s", result)
	})

	t.Run("single period is principal plus one period of interest", func(t *testing.T) {
		result := Pmt(dec("0.05"), 1, dec("1000.00"))
		assert.True(t, result.Equal(dec("1050.00")), "got %s", result)
	})

	t.Run("non-positive period count returns the balance", func(t *testing.T) {
		result := Pmt(dec("0.05"), 0, dec("1000.00"))
		assert.True(t, result.Equal(dec("1000.00")), "got %s", result)
	})

	t.Run("agrees with the annuity formula", func(t *testing.T) {
		// principal=30000, 6% p.a. fortnightly over 52 periods.
		r := 0.06 / 26
		n := 52.0
		expected := 30000 * r * math.Pow(1+r, n) / (math.Pow(1+r, n) - 1)

		got := Pmt(dec("0.06").Div(decimal.NewFromInt(26)), 52, dec("30000.00"))
		gotF, _ := got.Float64()
		assert.InDelta(t, expected, gotF, 0.01)
	})
}
