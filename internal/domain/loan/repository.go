package loan

import (
	"context"
)

// Repository persists loans and their change timelines.
type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)
	GetLoan(ctx context.Context, loanID int64) (*Loan, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	UpdateLoan(ctx context.Context, l *Loan) (*Loan, error)
	DeleteLoan(ctx context.Context, loanID int64) error

	GetTimelines(ctx context.Context, loanID int64) (*Timelines, error)

	AddRateChange(ctx context.Context, rc *RateChange) (*RateChange, error)
	DeleteRateChange(ctx context.Context, loanID, changeID int64) error
	AddRepaymentChange(ctx context.Context, rpc *RepaymentChange) (*RepaymentChange, error)
	DeleteRepaymentChange(ctx context.Context, loanID, changeID int64) error
	AddExtraRepayment(ctx context.Context, er *ExtraRepayment) (*ExtraRepayment, error)
	DeleteExtraRepayment(ctx context.Context, loanID, extraID int64) error

	MarkPaid(ctx context.Context, loanID int64, periodNumber int) error
	UnmarkPaid(ctx context.Context, loanID int64, periodNumber int) error
}
