package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"loantracker/internal/domain/loan"
	"loantracker/internal/domain/schedule"
	"loantracker/internal/event"
	"loantracker/internal/infrastructure/monitoring"
	"loantracker/internal/pkg/apperrors"
)

const maxCompareScenarios = 10

// SaveParams carries a new scenario's name and the what-if overlay it
// snapshots. A nil overlay freezes the loan as-is.
type SaveParams struct {
	Name        string
	Description string
	Overlay     *schedule.Overlay
}

// UpdateParams renames or recomputes an existing scenario. Nil fields
// are left untouched; an update with everything nil refreshes the
// snapshot against the loan's current state.
type UpdateParams struct {
	Name        *string
	Description *string
	Overlay     *schedule.Overlay
}

type ScenarioService interface {
	ListScenarios(ctx context.Context, loanID int64) ([]Scenario, error)
	SaveScenario(ctx context.Context, loanID int64, params SaveParams) (*Scenario, error)
	GetScenario(ctx context.Context, loanID, scenarioID int64) (*Scenario, error)
	UpdateScenario(ctx context.Context, loanID, scenarioID int64, params UpdateParams) (*Scenario, error)
	DeleteScenario(ctx context.Context, loanID, scenarioID int64) error
	CompareScenarios(ctx context.Context, loanID int64, scenarioIDs []int64) ([]Scenario, error)
}

type scenarioServiceImpl struct {
	repo      Repository
	loans     loan.Repository
	publisher event.EventPublisher
	logger    *slog.Logger
}

func NewScenarioService(r Repository, loans loan.Repository, publisher event.EventPublisher, logger *slog.Logger) ScenarioService {
	return &scenarioServiceImpl{repo: r, loans: loans, publisher: publisher, logger: logger}
}

func (s *scenarioServiceImpl) ListScenarios(ctx context.Context, loanID int64) ([]Scenario, error) {
	if _, err := s.loans.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	scenarios, err := s.repo.List(ctx, loanID)
	if err != nil {
		s.logger.Error("Failed to list scenarios", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to list scenarios for loan %d: %w", loanID, err)
	}

	hasDefault := false
	for _, sc := range scenarios {
		if sc.IsDefault {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		def, err := s.createDefaultScenario(ctx, loanID)
		if err != nil {
			s.logger.Error("Failed to materialize default scenario", "loanID", loanID, "error", err)
			return nil, fmt.Errorf("failed to create default scenario for loan %d: %w", loanID, err)
		}
		scenarios = append(scenarios, *def)
	}

	sort.SliceStable(scenarios, func(i, j int) bool {
		if scenarios[i].IsDefault != scenarios[j].IsDefault {
			return scenarios[i].IsDefault
		}
		return scenarios[i].ID < scenarios[j].ID
	})
	return scenarios, nil
}

func (s *scenarioServiceImpl) SaveScenario(ctx context.Context, loanID int64, params SaveParams) (*Scenario, error) {
	if params.Name == "" {
		return nil, apperrors.NewValidationError("name", "must not be empty")
	}
	if _, err := s.loans.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	sc, err := s.buildSnapshot(ctx, loanID, params.Name, params.Description, params.Overlay, false)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, sc)
	if err != nil {
		s.logger.Error("Failed to save scenario", "loanID", loanID, "name", params.Name, "error", err)
		return nil, err
	}
	s.notifySaved(ctx, created)
	s.logger.Info("Scenario saved", "loanID", loanID, "scenarioID", created.ID, "name", created.Name)
	return created, nil
}

func (s *scenarioServiceImpl) GetScenario(ctx context.Context, loanID, scenarioID int64) (*Scenario, error) {
	return s.repo.Get(ctx, loanID, scenarioID)
}

func (s *scenarioServiceImpl) UpdateScenario(ctx context.Context, loanID, scenarioID int64, params UpdateParams) (*Scenario, error) {
	existing, err := s.repo.Get(ctx, loanID, scenarioID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, apperrors.NewValidationError("name", "must not be empty")
		}
		existing.Name = *params.Name
	}
	if params.Description != nil {
		existing.Description = *params.Description
	}

	// Recompute the snapshot when an overlay is supplied, or when the
	// request carries nothing at all, which refreshes the scenario
	// against the loan's current state.
	if params.Overlay != nil || (params.Name == nil && params.Description == nil) {
		fresh, err := s.buildSnapshot(ctx, loanID, existing.Name, existing.Description, params.Overlay, existing.IsDefault)
		if err != nil {
			return nil, err
		}
		existing.TotalInterest = fresh.TotalInterest
		existing.TotalPaid = fresh.TotalPaid
		existing.PayoffDate = fresh.PayoffDate
		existing.ActualNumRepayments = fresh.ActualNumRepayments
		existing.ConfigJSON = fresh.ConfigJSON
		existing.ScheduleJSON = fresh.ScheduleJSON
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("Failed to update scenario", "loanID", loanID, "scenarioID", scenarioID, "error", err)
		return nil, err
	}
	s.notifySaved(ctx, updated)
	return updated, nil
}

func (s *scenarioServiceImpl) DeleteScenario(ctx context.Context, loanID, scenarioID int64) error {
	existing, err := s.repo.Get(ctx, loanID, scenarioID)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return apperrors.NewValidationError("scenario", "the Default scenario cannot be deleted")
	}
	if err := s.repo.Delete(ctx, loanID, scenarioID); err != nil {
		s.logger.Error("Failed to delete scenario", "loanID", loanID, "scenarioID", scenarioID, "error", err)
		return err
	}
	return nil
}

func (s *scenarioServiceImpl) CompareScenarios(ctx context.Context, loanID int64, scenarioIDs []int64) ([]Scenario, error) {
	if len(scenarioIDs) > maxCompareScenarios {
		return nil, apperrors.NewValidationError("ids", fmt.Sprintf("compare at most %d scenarios", maxCompareScenarios))
	}
	if _, err := s.loans.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	scenarios, err := s.repo.GetByIDs(ctx, loanID, scenarioIDs)
	if err != nil {
		s.logger.Error("Failed to load scenarios for comparison", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to load scenarios for loan %d: %w", loanID, err)
	}
	if len(scenarios) < 2 {
		return nil, apperrors.NewValidationError("ids", "need at least 2 scenarios to compare")
	}
	return scenarios, nil
}

func (s *scenarioServiceImpl) createDefaultScenario(ctx context.Context, loanID int64) (*Scenario, error) {
	sc, err := s.buildSnapshot(ctx, loanID, DefaultName, "Base scenario with no what-if adjustments", nil, true)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, sc)
}

func (s *scenarioServiceImpl) buildSnapshot(ctx context.Context, loanID int64, name, description string, overlay *schedule.Overlay, isDefault bool) (*Scenario, error) {
	l, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	tls, err := s.loans.GetTimelines(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timelines for loan %d: %w", loanID, err)
	}
	in := loan.EngineInput(l, tls)

	started := time.Now()
	var result *schedule.Result
	if overlay != nil {
		result, err = schedule.GenerateWhatIf(in, *overlay)
	} else {
		result, err = schedule.Generate(in)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule for loan %d: %w", loanID, err)
	}
	monitoring.RecordScheduleComputed("scenario", time.Since(started))

	cfgJSON, err := marshalConfig(buildConfig(in, overlay))
	if err != nil {
		return nil, err
	}
	rowsJSON, err := marshalRows(result.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule snapshot: %w", err)
	}

	return &Scenario{
		LoanID:              loanID,
		Name:                name,
		Description:         description,
		IsDefault:           isDefault,
		TotalInterest:       result.Summary.TotalInterest,
		TotalPaid:           result.Summary.ProjectedCost,
		PayoffDate:          result.Summary.PayoffDate,
		ActualNumRepayments: result.Summary.TotalRepayments,
		ConfigJSON:          cfgJSON,
		ScheduleJSON:        rowsJSON,
	}, nil
}

func (s *scenarioServiceImpl) notifySaved(ctx context.Context, sc *Scenario) {
	evt := event.ScenarioSavedEvent{
		LoanID:     sc.LoanID,
		ScenarioID: sc.ID,
		Name:       sc.Name,
		Timestamp:  time.Now(),
	}
	if err := s.publisher.PublishScenarioSaved(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish scenario saved event", "loanID", sc.LoanID, "scenarioID", sc.ID, "error", err)
	}
}
