package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"loantracker/internal/domain/scenario"
	"loantracker/internal/infrastructure/monitoring"
	"loantracker/internal/pkg/apperrors"
)

type ScenarioRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewScenarioRepository(db DBPool, logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{db: db, logger: logger.With("component", "ScenarioRepository")}
}

const scenarioColumns = "id, loan_id, name, description, is_default, total_interest, total_paid, payoff_date, actual_num_repayments, config_json, schedule_json, created_at, updated_at"

func scanScenario(row pgx.Row) (*scenario.Scenario, error) {
	var sc scenario.Scenario
	err := row.Scan(
		&sc.ID, &sc.LoanID, &sc.Name, &sc.Description, &sc.IsDefault,
		&sc.TotalInterest, &sc.TotalPaid, &sc.PayoffDate, &sc.ActualNumRepayments,
		&sc.ConfigJSON, &sc.ScheduleJSON, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *ScenarioRepository) Create(ctx context.Context, sc *scenario.Scenario) (*scenario.Scenario, error) {
	sql := `
        INSERT INTO scenarios (loan_id, name, description, is_default, total_interest, total_paid, payoff_date, actual_num_repayments, config_json, schedule_json, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING ` + scenarioColumns

	startTime := time.Now()
	created, err := scanScenario(r.db.QueryRow(ctx, sql,
		sc.LoanID, sc.Name, sc.Description, sc.IsDefault, sc.TotalInterest, sc.TotalPaid,
		sc.PayoffDate, sc.ActualNumRepayments, sc.ConfigJSON, sc.ScheduleJSON,
	))
	monitoring.RecordDBQuery("CreateScenario", queryStatus(err), time.Since(startTime))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert scenario", "loan_id", sc.LoanID, "name", sc.Name, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Scenario created in DB", "loan_id", sc.LoanID, "scenario_id", created.ID)
	return created, nil
}

func (r *ScenarioRepository) Get(ctx context.Context, loanID, scenarioID int64) (*scenario.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = $1 AND loan_id = $2`

	startTime := time.Now()
	sc, err := scanScenario(r.db.QueryRow(ctx, query, scenarioID, loanID))
	monitoring.RecordDBQuery("GetScenario", queryStatus(err), time.Since(startTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Scenario not found", "loan_id", loanID, "scenario_id", scenarioID)
			return nil, fmt.Errorf("%w: scenario %d for loan %d", apperrors.ErrNotFound, scenarioID, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to get scenario", "loan_id", loanID, "scenario_id", scenarioID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return sc, nil
}

func (r *ScenarioRepository) GetByIDs(ctx context.Context, loanID int64, scenarioIDs []int64) ([]scenario.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE loan_id = $1 AND id = ANY($2) ORDER BY id`

	rows, err := r.db.Query(ctx, query, loanID, scenarioIDs)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query scenarios by IDs", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectScenarios(rows)
}

func (r *ScenarioRepository) List(ctx context.Context, loanID int64) ([]scenario.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE loan_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query scenarios", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectScenarios(rows)
}

func collectScenarios(rows pgx.Rows) ([]scenario.Scenario, error) {
	scenarios := make([]scenario.Scenario, 0)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		scenarios = append(scenarios, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return scenarios, nil
}

func (r *ScenarioRepository) Update(ctx context.Context, sc *scenario.Scenario) (*scenario.Scenario, error) {
	sql := `
        UPDATE scenarios
        SET name = $1, description = $2, total_interest = $3, total_paid = $4, payoff_date = $5, actual_num_repayments = $6, config_json = $7, schedule_json = $8, updated_at = NOW()
        WHERE id = $9 AND loan_id = $10
        RETURNING ` + scenarioColumns

	startTime := time.Now()
	updated, err := scanScenario(r.db.QueryRow(ctx, sql,
		sc.Name, sc.Description, sc.TotalInterest, sc.TotalPaid, sc.PayoffDate,
		sc.ActualNumRepayments, sc.ConfigJSON, sc.ScheduleJSON, sc.ID, sc.LoanID,
	))
	monitoring.RecordDBQuery("UpdateScenario", queryStatus(err), time.Since(startTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: scenario %d for loan %d", apperrors.ErrNotFound, sc.ID, sc.LoanID)
		}
		r.logger.ErrorContext(ctx, "Failed to update scenario", "loan_id", sc.LoanID, "scenario_id", sc.ID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return updated, nil
}

func (r *ScenarioRepository) Delete(ctx context.Context, loanID, scenarioID int64) error {
	sql := `DELETE FROM scenarios WHERE id = $1 AND loan_id = $2`

	cmdTag, err := r.db.Exec(ctx, sql, scenarioID, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete scenario", "loan_id", loanID, "scenario_id", scenarioID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: scenario %d for loan %d", apperrors.ErrNotFound, scenarioID, loanID)
	}
	return nil
}
