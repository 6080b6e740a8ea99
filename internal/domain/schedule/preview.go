package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/pkg/apperrors"
)

// RateChangeOption is one labeled way of absorbing a candidate rate change,
// carrying the resulting schedule's summary and its delta against the
// baseline. Deltas are baseline minus hypothetical: positive interest delta
// means interest saved, positive repayment delta means fewer payments.
type RateChangeOption struct {
	Label          string
	FixedRepayment decimal.Decimal
	PayoffDate     time.Time
	TotalInterest  decimal.Decimal
	NumRepayments  int
	InterestDelta  decimal.Decimal
	RepaymentDelta int
}

// RateChangePreview compares a candidate rate change against the current
// schedule. Loans with a fixed repayment get two options (keep the payment
// and let the term move, or re-amortize to hold the payoff date); loans
// without one get the single auto-adjusting option.
type RateChangePreview struct {
	HasFixedRepayment bool
	CurrentPayoffDate time.Time
	CurrentRepayment  *decimal.Decimal
	Options           []RateChangeOption
}

// RepaymentChangePreview compares a candidate repayment change against the
// current schedule. Deltas follow the same baseline-minus-hypothetical
// convention as RateChangeOption.
type RepaymentChangePreview struct {
	CurrentPayoffDate    time.Time
	CurrentTotalInterest decimal.Decimal
	CurrentNumRepayments int
	NewPayoffDate        time.Time
	NewTotalInterest     decimal.Decimal
	NewNumRepayments     int
	InterestDelta        decimal.Decimal
	RepaymentDelta       int
}

// PreviewRateChange runs the engine with and without the candidate rate
// change and returns the labeled options a caller can present. Nothing is
// persisted.
func PreviewRateChange(in Input, candidate RateChange) (*RateChangePreview, error) {
	baseline, err := Generate(in)
	if err != nil {
		return nil, err
	}

	withChange := in
	withChange.RateChanges = append(append([]RateChange{}, in.RateChanges...), candidate)
	candidateIdx := len(withChange.RateChanges) - 1

	preview := &RateChangePreview{
		HasFixedRepayment: in.Terms.FixedRepayment != nil,
		CurrentPayoffDate: baseline.Summary.PayoffDate,
		CurrentRepayment:  in.Terms.FixedRepayment,
	}

	if in.Terms.FixedRepayment == nil {
		// No fixed repayment: the calculated payment re-amortizes on its
		// own, so there is only one outcome to show.
		hyp, err := Generate(withChange)
		if err != nil {
			return nil, err
		}
		preview.Options = append(preview.Options, option(
			"Payment auto-adjusts (no fixed repayment)",
			zero, hyp.Summary, baseline.Summary,
		))
		return preview, nil
	}

	fixed := *in.Terms.FixedRepayment

	keep, err := Generate(withChange)
	if err != nil {
		return nil, err
	}
	preview.Options = append(preview.Options, option(
		fmt.Sprintf("Keep repayment at $%s", fixed.StringFixed(2)),
		fixed, keep.Summary, baseline.Summary,
	))

	solution, err := solvePayoffTarget(withChange, baseline.Summary.PayoffDate, candidateIdx)
	if err != nil {
		if errors.Is(err, apperrors.ErrTargetUnreachable) {
			// No repayment inside the bounds can hold the payoff date;
			// the keep-repayment option stands alone.
			return preview, nil
		}
		return nil, err
	}
	preview.Options = append(preview.Options, RateChangeOption{
		Label:          fmt.Sprintf("Adjust repayment to $%s", solution.RequiredRepayment.StringFixed(2)),
		FixedRepayment: solution.RequiredRepayment,
		PayoffDate:     solution.PayoffDate,
		TotalInterest:  solution.TotalInterest,
		NumRepayments:  solution.NumRepayments,
		InterestDelta:  baseline.Summary.TotalInterest.Sub(solution.TotalInterest).Round(2),
		RepaymentDelta: baseline.Summary.TotalRepayments - solution.NumRepayments,
	})
	return preview, nil
}

// PreviewRepaymentChange diffs the current schedule against one with the
// candidate repayment change appended to the timeline.
func PreviewRepaymentChange(in Input, candidate RepaymentChange) (*RepaymentChangePreview, error) {
	baseline, err := Generate(in)
	if err != nil {
		return nil, err
	}

	withChange := in
	withChange.RepaymentChanges = append(append([]RepaymentChange{}, in.RepaymentChanges...), candidate)
	hyp, err := Generate(withChange)
	if err != nil {
		return nil, err
	}

	return &RepaymentChangePreview{
		CurrentPayoffDate:    baseline.Summary.PayoffDate,
		CurrentTotalInterest: baseline.Summary.TotalInterest,
		CurrentNumRepayments: baseline.Summary.TotalRepayments,
		NewPayoffDate:        hyp.Summary.PayoffDate,
		NewTotalInterest:     hyp.Summary.TotalInterest,
		NewNumRepayments:     hyp.Summary.TotalRepayments,
		InterestDelta:        baseline.Summary.TotalInterest.Sub(hyp.Summary.TotalInterest).Round(2),
		RepaymentDelta:       baseline.Summary.TotalRepayments - hyp.Summary.TotalRepayments,
	}, nil
}

func option(label string, fixedRepayment decimal.Decimal, hyp, baseline Summary) RateChangeOption {
	return RateChangeOption{
		Label:          label,
		FixedRepayment: fixedRepayment,
		PayoffDate:     hyp.PayoffDate,
		TotalInterest:  hyp.TotalInterest,
		NumRepayments:  hyp.TotalRepayments,
		InterestDelta:  baseline.TotalInterest.Sub(hyp.TotalInterest).Round(2),
		RepaymentDelta: baseline.TotalRepayments - hyp.TotalRepayments,
	}
}
