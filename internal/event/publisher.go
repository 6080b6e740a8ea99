package event

import (
	"context"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LoanChangedEvent announces that a loan or one of its timelines changed
// and downstream projections should recompute.
type LoanChangedEvent struct {
	LoanID    int64     `json:"loanId"`
	Action    string    `json:"action"`
	What      string    `json:"what"`
	Timestamp time.Time `json:"timestamp"`
}

// ScenarioSavedEvent announces a saved what-if snapshot.
type ScenarioSavedEvent struct {
	LoanID     int64     `json:"loanId"`
	ScenarioID int64     `json:"scenarioId"`
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentUpcomingEvent is published by the reminder job for payments
// falling due inside the reminder window.
type PaymentUpcomingEvent struct {
	LoanID       int64     `json:"loanId"`
	LoanName     string    `json:"loanName"`
	PeriodNumber int       `json:"periodNumber"`
	DueDate      string    `json:"dueDate"`
	Amount       string    `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

type EventPublisher interface {
	PublishLoanChanged(ctx context.Context, event LoanChangedEvent) error
	PublishScenarioSaved(ctx context.Context, event ScenarioSavedEvent) error
	PublishPaymentUpcoming(ctx context.Context, event PaymentUpcomingEvent) error
}

// NoopPublisher satisfies EventPublisher when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishLoanChanged(context.Context, LoanChangedEvent) error { return nil }

func (NoopPublisher) PublishScenarioSaved(context.Context, ScenarioSavedEvent) error { return nil }

func (NoopPublisher) PublishPaymentUpcoming(context.Context, PaymentUpcomingEvent) error { return nil }
