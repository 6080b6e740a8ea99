// Package scenario stores named what-if snapshots of a loan's schedule.
// A snapshot freezes the generating configuration and the full schedule
// as JSON so saved scenarios stay comparable after the live loan moves on.
package scenario

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantracker/internal/domain/schedule"
)

// DefaultName is the auto-materialized scenario reflecting the loan as it
// stands, with no what-if adjustments.
const DefaultName = "Default"

type Scenario struct {
	ID                  int64
	LoanID              int64
	Name                string
	Description         string
	IsDefault           bool
	TotalInterest       decimal.Decimal
	TotalPaid           decimal.Decimal
	PayoffDate          time.Time
	ActualNumRepayments int
	ConfigJSON          json.RawMessage
	ScheduleJSON        json.RawMessage
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Config is the frozen generating configuration, stored alongside the
// schedule so a scenario documents what produced it.
type Config struct {
	Principal        decimal.Decimal         `json:"principal"`
	AnnualRate       decimal.Decimal         `json:"annual_rate"`
	Frequency        schedule.Frequency      `json:"frequency"`
	StartDate        string                  `json:"start_date"`
	LoanTerm         int                     `json:"loan_term"`
	FixedRepayment   *decimal.Decimal        `json:"fixed_repayment"`
	RateChanges      []ConfigRateChange      `json:"rate_changes"`
	ExtraRepayments  []ConfigExtraRepayment  `json:"extra_repayments"`
	RepaymentChanges []ConfigRepaymentChange `json:"repayment_changes"`
	WhatIfOverrides  *ConfigOverrides        `json:"whatif_overrides,omitempty"`
}

type ConfigRateChange struct {
	EffectiveDate     string           `json:"effective_date"`
	AnnualRate        decimal.Decimal  `json:"annual_rate"`
	AdjustedRepayment *decimal.Decimal `json:"adjusted_repayment"`
	Note              string           `json:"note,omitempty"`
}

type ConfigExtraRepayment struct {
	PaymentDate string          `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
}

type ConfigRepaymentChange struct {
	EffectiveDate string          `json:"effective_date"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
}

// ConfigOverrides records only the what-if adjustments that were applied,
// so a saved scenario shows how it diverged from the base loan.
type ConfigOverrides struct {
	FixedRepayment             *decimal.Decimal        `json:"fixed_repayment,omitempty"`
	AdditionalRateChanges      []ConfigRateChange      `json:"additional_rate_changes,omitempty"`
	AdditionalRepaymentChanges []ConfigRepaymentChange `json:"additional_repayment_changes,omitempty"`
	AdditionalExtraRepayments  []ConfigExtraRepayment  `json:"additional_extra_repayments,omitempty"`
}

// scheduleRow is the snapshot row shape, mirroring the API's schedule
// rows so stored and live schedules read the same.
type scheduleRow struct {
	Number         int             `json:"payment_number"`
	Date           string          `json:"payment_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Payment        decimal.Decimal `json:"payment"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Rate           decimal.Decimal `json:"annual_rate"`
	CalculatedPmt  decimal.Decimal `json:"calculated_payment"`
	Additional     decimal.Decimal `json:"additional"`
	Extra          decimal.Decimal `json:"extra_repayment"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	IsPaid         bool            `json:"is_paid"`
}

func marshalRows(rows []schedule.Row) (json.RawMessage, error) {
	out := make([]scheduleRow, len(rows))
	for i, r := range rows {
		out[i] = scheduleRow{
			Number:         r.Number,
			Date:           r.Date.Format(time.DateOnly),
			OpeningBalance: r.OpeningBalance,
			Payment:        r.Payment(),
			Principal:      r.Principal,
			Interest:       r.Interest,
			Rate:           r.Rate,
			CalculatedPmt:  r.CalculatedPmt,
			Additional:     r.Additional,
			Extra:          r.Extra,
			ClosingBalance: r.ClosingBalance,
			IsPaid:         r.IsPaid,
		}
	}
	return json.Marshal(out)
}

func marshalConfig(cfg Config) (json.RawMessage, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario config: %w", err)
	}
	return b, nil
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// buildConfig freezes the engine input plus the overlay that was applied.
func buildConfig(in schedule.Input, overlay *schedule.Overlay) Config {
	cfg := Config{
		Principal:        in.Terms.Principal,
		AnnualRate:       in.Terms.AnnualRate,
		Frequency:        in.Terms.Frequency,
		StartDate:        formatDate(in.Terms.StartDate),
		LoanTerm:         in.Terms.LoanTerm,
		FixedRepayment:   in.Terms.FixedRepayment,
		RateChanges:      []ConfigRateChange{},
		ExtraRepayments:  []ConfigExtraRepayment{},
		RepaymentChanges: []ConfigRepaymentChange{},
	}
	for _, rc := range in.RateChanges {
		cfg.RateChanges = append(cfg.RateChanges, ConfigRateChange{
			EffectiveDate:     formatDate(rc.EffectiveDate),
			AnnualRate:        rc.AnnualRate,
			AdjustedRepayment: rc.AdjustedRepayment,
			Note:              rc.Note,
		})
	}
	for _, er := range in.ExtraRepayments {
		cfg.ExtraRepayments = append(cfg.ExtraRepayments, ConfigExtraRepayment{
			PaymentDate: formatDate(er.PaymentDate),
			Amount:      er.Amount,
			Note:        er.Note,
		})
	}
	for _, rpc := range in.RepaymentChanges {
		cfg.RepaymentChanges = append(cfg.RepaymentChanges, ConfigRepaymentChange{
			EffectiveDate: formatDate(rpc.EffectiveDate),
			Amount:        rpc.Amount,
			Note:          rpc.Note,
		})
	}

	if overlay == nil {
		return cfg
	}

	ov := &ConfigOverrides{}
	empty := true
	if overlay.FixedRepayment != nil {
		ov.FixedRepayment = overlay.FixedRepayment
		cfg.FixedRepayment = overlay.FixedRepayment
		empty = false
	}
	for _, rc := range overlay.AdditionalRateChanges {
		ov.AdditionalRateChanges = append(ov.AdditionalRateChanges, ConfigRateChange{
			EffectiveDate: formatDate(rc.EffectiveDate),
			AnnualRate:    rc.AnnualRate,
		})
		empty = false
	}
	for _, rpc := range overlay.AdditionalRepaymentChange {
		ov.AdditionalRepaymentChanges = append(ov.AdditionalRepaymentChanges, ConfigRepaymentChange{
			EffectiveDate: formatDate(rpc.EffectiveDate),
			Amount:        rpc.Amount,
		})
		empty = false
	}
	for _, er := range overlay.AdditionalExtraRepayments {
		ov.AdditionalExtraRepayments = append(ov.AdditionalExtraRepayments, ConfigExtraRepayment{
			PaymentDate: formatDate(er.PaymentDate),
			Amount:      er.Amount,
		})
		empty = false
	}
	if !empty {
		cfg.WhatIfOverrides = ov
	}
	return cfg
}
