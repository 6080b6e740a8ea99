package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRateChange(t *testing.T) {
	candidate := RateChange{EffectiveDate: Date(2026, time.August, 1), AnnualRate: dec("0.07")}

	t.Run("fixed repayment yields keep and adjust options", func(t *testing.T) {
		in := Input{Terms: baseTerms()}
		preview, err := PreviewRateChange(in, candidate)
		require.NoError(t, err)

		assert.True(t, preview.HasFixedRepayment)
		require.NotNil(t, preview.CurrentRepayment)
		require.Len(t, preview.Options, 2)

		keep := preview.Options[0]
		assert.Contains(t, keep.Label, "Keep repayment")
		assert.True(t, keep.FixedRepayment.Equal(dec("612.39")))
		// Higher rate at the same payment costs interest and stretches the
		// term, so baseline-minus-hypothetical deltas go negative.
		assert.True(t, keep.InterestDelta.IsNegative(), "delta %s", keep.InterestDelta)
		assert.LessOrEqual(t, keep.RepaymentDelta, 0)

		adjust := preview.Options[1]
		assert.Contains(t, adjust.Label, "Adjust repayment")
		assert.True(t, adjust.FixedRepayment.GreaterThan(dec("612.39")),
			"re-amortizing at a higher rate needs a bigger payment, got %s", adjust.FixedRepayment)
		assert.False(t, adjust.PayoffDate.After(preview.CurrentPayoffDate))
	})

	t.Run("no fixed repayment yields the auto-adjust option", func(t *testing.T) {
		terms := baseTerms()
		terms.FixedRepayment = nil
		preview, err := PreviewRateChange(Input{Terms: terms}, candidate)
		require.NoError(t, err)

		assert.False(t, preview.HasFixedRepayment)
		assert.Nil(t, preview.CurrentRepayment)
		require.Len(t, preview.Options, 1)
		assert.Contains(t, preview.Options[0].Label, "auto-adjusts")
		assert.True(t, preview.Options[0].InterestDelta.IsNegative(), "higher rate costs interest")
	})

	t.Run("preview persists nothing into the input", func(t *testing.T) {
		in := Input{Terms: baseTerms()}
		_, err := PreviewRateChange(in, candidate)
		require.NoError(t, err)
		assert.Nil(t, in.RateChanges)
	})
}

func TestPreviewRepaymentChange(t *testing.T) {
	in := Input{Terms: baseTerms()}

	t.Run("bigger repayment saves interest and payments", func(t *testing.T) {
		preview, err := PreviewRepaymentChange(in, RepaymentChange{
			EffectiveDate: Date(2026, time.August, 1),
			Amount:        dec("800.00"),
		})
		require.NoError(t, err)

		assert.Equal(t, 52, preview.CurrentNumRepayments)
		assert.Less(t, preview.NewNumRepayments, preview.CurrentNumRepayments)
		assert.True(t, preview.NewPayoffDate.Before(preview.CurrentPayoffDate))
		assert.True(t, preview.InterestDelta.IsPositive(), "interest saved, got %s", preview.InterestDelta)
		assert.Positive(t, preview.RepaymentDelta)
	})

	t.Run("smaller repayment costs interest", func(t *testing.T) {
		preview, err := PreviewRepaymentChange(in, RepaymentChange{
			EffectiveDate: Date(2026, time.August, 1),
			Amount:        dec("500.00"),
		})
		require.NoError(t, err)

		assert.True(t, preview.InterestDelta.IsNegative(), "got %s", preview.InterestDelta)
		assert.Negative(t, preview.RepaymentDelta)
	})
}
