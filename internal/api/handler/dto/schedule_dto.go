package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/domain/schedule"
)

type ScheduleRowResponse struct {
	PaymentNumber  int    `json:"paymentNumber"`
	PaymentDate    string `json:"paymentDate"`
	OpeningBalance string `json:"openingBalance"`
	Payment        string `json:"payment"`
	Principal      string `json:"principal"`
	Interest       string `json:"interest"`
	AnnualRate     string `json:"annualRate"`
	CalculatedPmt  string `json:"calculatedPayment"`
	Additional     string `json:"additional"`
	ExtraRepayment string `json:"extraRepayment"`
	ClosingBalance string `json:"closingBalance"`
	IsPaid         bool   `json:"isPaid"`
}

type NextPaymentResponse struct {
	PaymentNumber int    `json:"paymentNumber"`
	PaymentDate   string `json:"paymentDate"`
	Amount        string `json:"amount"`
}

type SummaryResponse struct {
	TotalRepayments  int                  `json:"totalRepayments"`
	TotalInterest    string               `json:"totalInterest"`
	TotalPaid        string               `json:"totalPaid"`
	ProjectedCost    string               `json:"projectedCost"`
	PayoffDate       string               `json:"payoffDate"`
	RemainingBalance string               `json:"remainingBalance"`
	PaymentsMade     int                  `json:"paymentsMade"`
	ProgressPct      int                  `json:"progressPct"`
	NextPayment      *NextPaymentResponse `json:"nextPayment,omitempty"`
	Warning          string               `json:"warning,omitempty"`
}

type ScheduleResponse struct {
	Rows    []ScheduleRowResponse `json:"rows"`
	Summary SummaryResponse       `json:"summary"`
}

// WhatIfRequest mirrors the overlay: pointer fields replace the stored
// timelines wholesale, the additional lists merge on top of them.
type WhatIfRequest struct {
	FixedRepayment             *string                  `json:"fixedRepayment,omitempty"`
	RateChanges                *[]RateChangeRequest     `json:"rateChanges,omitempty"`
	ExtraRepayments            *[]ExtraRepaymentRequest `json:"extraRepayments,omitempty"`
	AdditionalRateChanges      []RateChangeRequest      `json:"additionalRateChanges,omitempty"`
	AdditionalRepaymentChanges []RepaymentChangeRequest `json:"additionalRepaymentChanges,omitempty"`
	AdditionalExtraRepayments  []ExtraRepaymentRequest  `json:"additionalExtraRepayments,omitempty"`
}

func (r *WhatIfRequest) Validate() error {
	if r.FixedRepayment != nil {
		if _, err := decimal.NewFromString(*r.FixedRepayment); err != nil {
			return fmt.Errorf("invalid fixedRepayment: %w", err)
		}
	}
	if r.RateChanges != nil {
		for i := range *r.RateChanges {
			if err := (*r.RateChanges)[i].Validate(); err != nil {
				return fmt.Errorf("rateChanges[%d]: %w", i, err)
			}
		}
	}
	if r.ExtraRepayments != nil {
		for i := range *r.ExtraRepayments {
			if err := (*r.ExtraRepayments)[i].Validate(); err != nil {
				return fmt.Errorf("extraRepayments[%d]: %w", i, err)
			}
		}
	}
	for i := range r.AdditionalRateChanges {
		if err := r.AdditionalRateChanges[i].Validate(); err != nil {
			return fmt.Errorf("additionalRateChanges[%d]: %w", i, err)
		}
	}
	for i := range r.AdditionalRepaymentChanges {
		if err := r.AdditionalRepaymentChanges[i].Validate(); err != nil {
			return fmt.Errorf("additionalRepaymentChanges[%d]: %w", i, err)
		}
	}
	for i := range r.AdditionalExtraRepayments {
		if err := r.AdditionalExtraRepayments[i].Validate(); err != nil {
			return fmt.Errorf("additionalExtraRepayments[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *WhatIfRequest) ToOverlay() schedule.Overlay {
	var overlay schedule.Overlay
	if r.FixedRepayment != nil {
		fixed, _ := decimal.NewFromString(*r.FixedRepayment)
		overlay.FixedRepayment = &fixed
	}
	if r.RateChanges != nil {
		rcs := make([]schedule.RateChange, len(*r.RateChanges))
		for i := range *r.RateChanges {
			rcs[i] = toScheduleRateChange(&(*r.RateChanges)[i])
		}
		overlay.RateChanges = &rcs
	}
	if r.ExtraRepayments != nil {
		ers := make([]schedule.ExtraRepayment, len(*r.ExtraRepayments))
		for i := range *r.ExtraRepayments {
			ers[i] = toScheduleExtraRepayment(&(*r.ExtraRepayments)[i])
		}
		overlay.ExtraRepayments = &ers
	}
	for i := range r.AdditionalRateChanges {
		overlay.AdditionalRateChanges = append(overlay.AdditionalRateChanges, toScheduleRateChange(&r.AdditionalRateChanges[i]))
	}
	for i := range r.AdditionalRepaymentChanges {
		params := r.AdditionalRepaymentChanges[i].ToParams()
		overlay.AdditionalRepaymentChange = append(overlay.AdditionalRepaymentChange, schedule.RepaymentChange{
			EffectiveDate: params.EffectiveDate,
			Amount:        params.Amount,
			Note:          params.Note,
		})
	}
	for i := range r.AdditionalExtraRepayments {
		overlay.AdditionalExtraRepayments = append(overlay.AdditionalExtraRepayments, toScheduleExtraRepayment(&r.AdditionalExtraRepayments[i]))
	}
	return overlay
}

func toScheduleRateChange(r *RateChangeRequest) schedule.RateChange {
	params := r.ToParams()
	return schedule.RateChange{
		EffectiveDate:     params.EffectiveDate,
		AnnualRate:        params.AnnualRate,
		AdjustedRepayment: params.AdjustedRepayment,
		Note:              params.Note,
	}
}

func toScheduleExtraRepayment(r *ExtraRepaymentRequest) schedule.ExtraRepayment {
	params := r.ToParams()
	return schedule.ExtraRepayment{
		PaymentDate: params.PaymentDate,
		Amount:      params.Amount,
		Note:        params.Note,
	}
}

type PayoffTargetResponse struct {
	RequiredRepayment string `json:"requiredRepayment"`
	TotalInterest     string `json:"totalInterest"`
	ProjectedCost     string `json:"projectedCost"`
	NumRepayments     int    `json:"numRepayments"`
	PayoffDate        string `json:"payoffDate"`
}

type RateChangeOptionResponse struct {
	Label          string `json:"label"`
	FixedRepayment string `json:"fixedRepayment"`
	PayoffDate     string `json:"payoffDate"`
	TotalInterest  string `json:"totalInterest"`
	NumRepayments  int    `json:"numRepayments"`
	InterestDelta  string `json:"interestDelta"`
	RepaymentDelta int    `json:"repaymentDelta"`
}

type RateChangePreviewResponse struct {
	HasFixedRepayment bool                       `json:"hasFixedRepayment"`
	CurrentPayoffDate string                     `json:"currentPayoffDate"`
	CurrentRepayment  *string                    `json:"currentRepayment,omitempty"`
	Options           []RateChangeOptionResponse `json:"options"`
}

type RepaymentChangePreviewResponse struct {
	CurrentPayoffDate    string `json:"currentPayoffDate"`
	CurrentTotalInterest string `json:"currentTotalInterest"`
	CurrentNumRepayments int    `json:"currentNumRepayments"`
	NewPayoffDate        string `json:"newPayoffDate"`
	NewTotalInterest     string `json:"newTotalInterest"`
	NewNumRepayments     int    `json:"newNumRepayments"`
	InterestDelta        string `json:"interestDelta"`
	RepaymentDelta       int    `json:"repaymentDelta"`
}

func NewScheduleResponse(result *schedule.Result) ScheduleResponse {
	rows := make([]ScheduleRowResponse, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = ScheduleRowResponse{
			PaymentNumber:  row.Number,
			PaymentDate:    row.Date.Format(time.DateOnly),
			OpeningBalance: formatMoney(row.OpeningBalance),
			Payment:        formatMoney(row.Payment()),
			Principal:      formatMoney(row.Principal),
			Interest:       formatMoney(row.Interest),
			AnnualRate:     row.Rate.String(),
			CalculatedPmt:  formatMoney(row.CalculatedPmt),
			Additional:     formatMoney(row.Additional),
			ExtraRepayment: formatMoney(row.Extra),
			ClosingBalance: formatMoney(row.ClosingBalance),
			IsPaid:         row.IsPaid,
		}
	}
	return ScheduleResponse{Rows: rows, Summary: NewSummaryResponse(&result.Summary)}
}

func NewSummaryResponse(s *schedule.Summary) SummaryResponse {
	resp := SummaryResponse{
		TotalRepayments:  s.TotalRepayments,
		TotalInterest:    formatMoney(s.TotalInterest),
		TotalPaid:        formatMoney(s.TotalPaid),
		ProjectedCost:    formatMoney(s.ProjectedCost),
		PayoffDate:       s.PayoffDate.Format(time.DateOnly),
		RemainingBalance: formatMoney(s.RemainingBalance),
		PaymentsMade:     s.PaymentsMade,
		ProgressPct:      s.ProgressPct,
		Warning:          s.Warning,
	}
	if s.NextPayment != nil {
		resp.NextPayment = &NextPaymentResponse{
			PaymentNumber: s.NextPayment.Number,
			PaymentDate:   s.NextPayment.Date.Format(time.DateOnly),
			Amount:        formatMoney(s.NextPayment.Amount),
		}
	}
	return resp
}

func NewPayoffTargetResponse(sol *schedule.PayoffSolution) PayoffTargetResponse {
	return PayoffTargetResponse{
		RequiredRepayment: formatMoney(sol.RequiredRepayment),
		TotalInterest:     formatMoney(sol.TotalInterest),
		ProjectedCost:     formatMoney(sol.ProjectedCost),
		NumRepayments:     sol.NumRepayments,
		PayoffDate:        sol.PayoffDate.Format(time.DateOnly),
	}
}

func NewRateChangePreviewResponse(p *schedule.RateChangePreview) RateChangePreviewResponse {
	resp := RateChangePreviewResponse{
		HasFixedRepayment: p.HasFixedRepayment,
		CurrentPayoffDate: p.CurrentPayoffDate.Format(time.DateOnly),
		CurrentRepayment:  formatMoneyPtr(p.CurrentRepayment),
		Options:           make([]RateChangeOptionResponse, len(p.Options)),
	}
	for i, opt := range p.Options {
		resp.Options[i] = RateChangeOptionResponse{
			Label:          opt.Label,
			FixedRepayment: formatMoney(opt.FixedRepayment),
			PayoffDate:     opt.PayoffDate.Format(time.DateOnly),
			TotalInterest:  formatMoney(opt.TotalInterest),
			NumRepayments:  opt.NumRepayments,
			InterestDelta:  formatMoney(opt.InterestDelta),
			RepaymentDelta: opt.RepaymentDelta,
		}
	}
	return resp
}

func NewRepaymentChangePreviewResponse(p *schedule.RepaymentChangePreview) RepaymentChangePreviewResponse {
	return RepaymentChangePreviewResponse{
		CurrentPayoffDate:    p.CurrentPayoffDate.Format(time.DateOnly),
		CurrentTotalInterest: formatMoney(p.CurrentTotalInterest),
		CurrentNumRepayments: p.CurrentNumRepayments,
		NewPayoffDate:        p.NewPayoffDate.Format(time.DateOnly),
		NewTotalInterest:     formatMoney(p.NewTotalInterest),
		NewNumRepayments:     p.NewNumRepayments,
		InterestDelta:        formatMoney(p.InterestDelta),
		RepaymentDelta:       p.RepaymentDelta,
	}
}
