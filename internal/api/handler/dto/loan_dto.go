package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/domain/loan"
	"loantracker/internal/domain/schedule"
)

type LoanRequest struct {
	Name           string  `json:"name"`
	Principal      string  `json:"principal"`
	AnnualRate     string  `json:"annualRate"`
	Frequency      string  `json:"frequency"`
	StartDate      string  `json:"startDate"`
	LoanTerm       int     `json:"loanTerm"`
	FixedRepayment *string `json:"fixedRepayment,omitempty"`
}

func (r *LoanRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if _, err := decimal.NewFromString(r.Principal); err != nil {
		return fmt.Errorf("invalid principal: %w", err)
	}
	if _, err := decimal.NewFromString(r.AnnualRate); err != nil {
		return fmt.Errorf("invalid annualRate: %w", err)
	}
	if !schedule.Frequency(r.Frequency).Valid() {
		return fmt.Errorf("frequency must be weekly, fortnightly or monthly")
	}
	if _, err := time.Parse(time.DateOnly, r.StartDate); err != nil {
		return fmt.Errorf("invalid startDate format (use YYYY-MM-DD): %w", err)
	}
	if r.LoanTerm <= 0 {
		return fmt.Errorf("loanTerm must be positive")
	}
	if r.FixedRepayment != nil {
		if _, err := decimal.NewFromString(*r.FixedRepayment); err != nil {
			return fmt.Errorf("invalid fixedRepayment: %w", err)
		}
	}
	return nil
}

// ToParams converts a validated request into service parameters.
func (r *LoanRequest) ToParams() loan.CreateParams {
	principal, _ := decimal.NewFromString(r.Principal)
	annualRate, _ := decimal.NewFromString(r.AnnualRate)
	startDate, _ := time.Parse(time.DateOnly, r.StartDate)

	params := loan.CreateParams{
		Name:       r.Name,
		Principal:  principal,
		AnnualRate: annualRate,
		Frequency:  schedule.Frequency(r.Frequency),
		StartDate:  startDate,
		LoanTerm:   r.LoanTerm,
	}
	if r.FixedRepayment != nil {
		fixed, _ := decimal.NewFromString(*r.FixedRepayment)
		params.FixedRepayment = &fixed
	}
	return params
}

type RateChangeRequest struct {
	EffectiveDate     string  `json:"effectiveDate"`
	AnnualRate        string  `json:"annualRate"`
	AdjustedRepayment *string `json:"adjustedRepayment,omitempty"`
	Note              string  `json:"note,omitempty"`
}

func (r *RateChangeRequest) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effectiveDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := decimal.NewFromString(r.AnnualRate); err != nil {
		return fmt.Errorf("invalid annualRate: %w", err)
	}
	if r.AdjustedRepayment != nil {
		if _, err := decimal.NewFromString(*r.AdjustedRepayment); err != nil {
			return fmt.Errorf("invalid adjustedRepayment: %w", err)
		}
	}
	return nil
}

func (r *RateChangeRequest) ToParams() loan.RateChangeParams {
	date, _ := time.Parse(time.DateOnly, r.EffectiveDate)
	rate, _ := decimal.NewFromString(r.AnnualRate)

	params := loan.RateChangeParams{
		EffectiveDate: date,
		AnnualRate:    rate,
		Note:          r.Note,
	}
	if r.AdjustedRepayment != nil {
		adjusted, _ := decimal.NewFromString(*r.AdjustedRepayment)
		params.AdjustedRepayment = &adjusted
	}
	return params
}

type RepaymentChangeRequest struct {
	EffectiveDate string `json:"effectiveDate"`
	Amount        string `json:"amount"`
	Note          string `json:"note,omitempty"`
}

func (r *RepaymentChangeRequest) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effectiveDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := decimal.NewFromString(r.Amount); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	return nil
}

func (r *RepaymentChangeRequest) ToParams() loan.RepaymentChangeParams {
	date, _ := time.Parse(time.DateOnly, r.EffectiveDate)
	amount, _ := decimal.NewFromString(r.Amount)
	return loan.RepaymentChangeParams{EffectiveDate: date, Amount: amount, Note: r.Note}
}

type ExtraRepaymentRequest struct {
	PaymentDate string `json:"paymentDate"`
	Amount      string `json:"amount"`
	Note        string `json:"note,omitempty"`
}

func (r *ExtraRepaymentRequest) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.PaymentDate); err != nil {
		return fmt.Errorf("invalid paymentDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := decimal.NewFromString(r.Amount); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	return nil
}

func (r *ExtraRepaymentRequest) ToParams() loan.ExtraRepaymentParams {
	date, _ := time.Parse(time.DateOnly, r.PaymentDate)
	amount, _ := decimal.NewFromString(r.Amount)
	return loan.ExtraRepaymentParams{PaymentDate: date, Amount: amount, Note: r.Note}
}

type LoanResponse struct {
	ID             string                    `json:"id"`
	Name           string                    `json:"name"`
	Principal      string                    `json:"principal"`
	AnnualRate     string                    `json:"annualRate"`
	Frequency      string                    `json:"frequency"`
	StartDate      string                    `json:"startDate"`
	LoanTerm       int                       `json:"loanTerm"`
	FixedRepayment *string                   `json:"fixedRepayment,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
	RateChanges    []RateChangeResponse      `json:"rateChanges,omitempty"`
	Repayments     []RepaymentChangeResponse `json:"repaymentChanges,omitempty"`
	Extras         []ExtraRepaymentResponse  `json:"extraRepayments,omitempty"`
	PaidPeriods    []int                     `json:"paidPeriods,omitempty"`
}

type RateChangeResponse struct {
	ID                string  `json:"id"`
	EffectiveDate     string  `json:"effectiveDate"`
	AnnualRate        string  `json:"annualRate"`
	AdjustedRepayment *string `json:"adjustedRepayment,omitempty"`
	Note              string  `json:"note,omitempty"`
}

type RepaymentChangeResponse struct {
	ID            string `json:"id"`
	EffectiveDate string `json:"effectiveDate"`
	Amount        string `json:"amount"`
	Note          string `json:"note,omitempty"`
}

type ExtraRepaymentResponse struct {
	ID          string `json:"id"`
	PaymentDate string `json:"paymentDate"`
	Amount      string `json:"amount"`
	Note        string `json:"note,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatMoneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:             strconv.FormatInt(l.ID, 10),
		Name:           l.Name,
		Principal:      formatMoney(l.Principal),
		AnnualRate:     l.AnnualRate.String(),
		Frequency:      string(l.Frequency),
		StartDate:      l.StartDate.Format(time.DateOnly),
		LoanTerm:       l.LoanTerm,
		FixedRepayment: formatMoneyPtr(l.FixedRepayment),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func NewLoanDetailResponse(d *loan.Detail) LoanResponse {
	resp := NewLoanResponse(&d.Loan)
	resp.RateChanges = make([]RateChangeResponse, len(d.RateChanges))
	for i, rc := range d.RateChanges {
		resp.RateChanges[i] = NewRateChangeResponse(&rc)
	}
	resp.Repayments = make([]RepaymentChangeResponse, len(d.RepaymentChanges))
	for i, rpc := range d.RepaymentChanges {
		resp.Repayments[i] = NewRepaymentChangeResponse(&rpc)
	}
	resp.Extras = make([]ExtraRepaymentResponse, len(d.ExtraRepayments))
	for i, er := range d.ExtraRepayments {
		resp.Extras[i] = NewExtraRepaymentResponse(&er)
	}
	resp.PaidPeriods = d.PaidNumbers
	return resp
}

func NewRateChangeResponse(rc *loan.RateChange) RateChangeResponse {
	return RateChangeResponse{
		ID:                strconv.FormatInt(rc.ID, 10),
		EffectiveDate:     rc.EffectiveDate.Format(time.DateOnly),
		AnnualRate:        rc.AnnualRate.String(),
		AdjustedRepayment: formatMoneyPtr(rc.AdjustedRepayment),
		Note:              rc.Note,
	}
}

func NewRepaymentChangeResponse(rpc *loan.RepaymentChange) RepaymentChangeResponse {
	return RepaymentChangeResponse{
		ID:            strconv.FormatInt(rpc.ID, 10),
		EffectiveDate: rpc.EffectiveDate.Format(time.DateOnly),
		Amount:        formatMoney(rpc.Amount),
		Note:          rpc.Note,
	}
}

func NewExtraRepaymentResponse(er *loan.ExtraRepayment) ExtraRepaymentResponse {
	return ExtraRepaymentResponse{
		ID:          strconv.FormatInt(er.ID, 10),
		PaymentDate: er.PaymentDate.Format(time.DateOnly),
		Amount:      formatMoney(er.Amount),
		Note:        er.Note,
	}
}
