package scenario

import (
	"context"
)

// Repository persists scenario snapshots. Names are unique per loan;
// Create and Update surface apperrors.ErrAlreadyExists on collision.
type Repository interface {
	Create(ctx context.Context, sc *Scenario) (*Scenario, error)
	Get(ctx context.Context, loanID, scenarioID int64) (*Scenario, error)
	GetByIDs(ctx context.Context, loanID int64, scenarioIDs []int64) ([]Scenario, error)
	List(ctx context.Context, loanID int64) ([]Scenario, error)
	Update(ctx context.Context, sc *Scenario) (*Scenario, error)
	Delete(ctx context.Context, loanID, scenarioID int64) error
}
