package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loantracker/internal/pkg/apperrors"
)

func TestSolvePayoffTarget(t *testing.T) {
	terms := baseTerms()
	terms.FixedRepayment = nil
	in := Input{Terms: terms}
	target := Date(2027, time.June, 1)

	t.Run("found repayment meets the target and is minimal", func(t *testing.T) {
		solution, err := SolvePayoffTarget(in, target)
		require.NoError(t, err)

		fixed := solution.RequiredRepayment
		check := in
		check.Terms.FixedRepayment = &fixed
		result, err := Generate(check)
		require.NoError(t, err)
		assert.False(t, result.Summary.PayoffDate.After(target),
			"payoff %s after target %s", result.Summary.PayoffDate, target)
		assert.Equal(t, solution.NumRepayments, result.Summary.TotalRepayments)

		// One cent less must miss the target.
		smaller := fixed.Sub(cent)
		check.Terms.FixedRepayment = &smaller
		result, err = Generate(check)
		require.NoError(t, err)
		assert.True(t, result.Summary.PayoffDate.After(target) || !result.Converged(),
			"repayment %s should not reach the target", smaller)
	})

	t.Run("target before the first payable period is unreachable", func(t *testing.T) {
		_, err := SolvePayoffTarget(in, Date(2026, time.February, 25))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrTargetUnreachable)
	})

	t.Run("zero target date is invalid input", func(t *testing.T) {
		_, err := SolvePayoffTarget(in, time.Time{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("honors existing timelines", func(t *testing.T) {
		withRate := in
		withRate.RateChanges = []RateChange{{EffectiveDate: Date(2026, time.August, 1), AnnualRate: dec("0.07")}}

		base, err := SolvePayoffTarget(in, target)
		require.NoError(t, err)
		bumped, err := SolvePayoffTarget(withRate, target)
		require.NoError(t, err)
		assert.True(t, bumped.RequiredRepayment.GreaterThan(base.RequiredRepayment),
			"higher rate needs a bigger repayment: %s vs %s", bumped.RequiredRepayment, base.RequiredRepayment)
	})
}
