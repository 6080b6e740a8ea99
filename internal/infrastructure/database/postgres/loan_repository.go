package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"loantracker/internal/domain/loan"
	"loantracker/internal/infrastructure/monitoring"
	"loantracker/internal/pkg/apperrors"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

const loanColumns = "id, name, principal, annual_rate, frequency, start_date, loan_term, fixed_repayment, created_at, updated_at"

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	var fixed decimal.NullDecimal
	err := row.Scan(
		&l.ID, &l.Name, &l.Principal, &l.AnnualRate, &l.Frequency,
		&l.StartDate, &l.LoanTerm, &fixed, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fixed.Valid {
		l.FixedRepayment = &fixed.Decimal
	}
	return &l, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	sql := `
        INSERT INTO loans (name, principal, annual_rate, frequency, start_date, loan_term, fixed_repayment, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING ` + loanColumns

	startTime := time.Now()
	created, err := scanLoan(r.db.QueryRow(ctx, sql,
		l.Name, l.Principal, l.AnnualRate, l.Frequency, l.StartDate, l.LoanTerm, nullDecimal(l.FixedRepayment),
	))
	monitoring.RecordDBQuery("CreateLoan", queryStatus(err), time.Since(startTime))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)
	return created, nil
}

func (r *LoanRepository) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	startTime := time.Now()
	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))
	monitoring.RecordDBQuery("GetLoan", queryStatus(err), time.Since(startTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return l, nil
}

func (r *LoanRepository) ListLoans(ctx context.Context) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, *l)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) UpdateLoan(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	sql := `
        UPDATE loans
        SET name = $1, principal = $2, annual_rate = $3, frequency = $4, start_date = $5, loan_term = $6, fixed_repayment = $7, updated_at = NOW()
        WHERE id = $8
        RETURNING ` + loanColumns

	startTime := time.Now()
	updated, err := scanLoan(r.db.QueryRow(ctx, sql,
		l.Name, l.Principal, l.AnnualRate, l.Frequency, l.StartDate, l.LoanTerm, nullDecimal(l.FixedRepayment), l.ID,
	))
	monitoring.RecordDBQuery("UpdateLoan", queryStatus(err), time.Since(startTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, l.ID)
		}
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return updated, nil
}

func (r *LoanRepository) DeleteLoan(ctx context.Context, loanID int64) error {
	sql := `DELETE FROM loans WHERE id = $1`

	startTime := time.Now()
	cmdTag, err := r.db.Exec(ctx, sql, loanID)
	monitoring.RecordDBQuery("DeleteLoan", queryStatus(err), time.Since(startTime))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
	}
	r.logger.InfoContext(ctx, "Loan deleted from DB", "loan_id", loanID)
	return nil
}

func (r *LoanRepository) GetTimelines(ctx context.Context, loanID int64) (*loan.Timelines, error) {
	tls := &loan.Timelines{
		RateChanges:      make([]loan.RateChange, 0),
		RepaymentChanges: make([]loan.RepaymentChange, 0),
		ExtraRepayments:  make([]loan.ExtraRepayment, 0),
		PaidNumbers:      make([]int, 0),
	}

	startTime := time.Now()
	err := r.loadTimelines(ctx, loanID, tls)
	monitoring.RecordDBQuery("GetTimelines", queryStatus(err), time.Since(startTime))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load loan timelines", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tls, nil
}

func (r *LoanRepository) loadTimelines(ctx context.Context, loanID int64, tls *loan.Timelines) error {
	rateSQL := `
        SELECT id, loan_id, effective_date, annual_rate, adjusted_repayment, note, created_at
        FROM rate_changes
        WHERE loan_id = $1
        ORDER BY effective_date, id`

	rows, err := r.db.Query(ctx, rateSQL, loanID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rc loan.RateChange
		var adjusted decimal.NullDecimal
		if err := rows.Scan(&rc.ID, &rc.LoanID, &rc.EffectiveDate, &rc.AnnualRate, &adjusted, &rc.Note, &rc.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		if adjusted.Valid {
			rc.AdjustedRepayment = &adjusted.Decimal
		}
		tls.RateChanges = append(tls.RateChanges, rc)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	repaymentSQL := `
        SELECT id, loan_id, effective_date, amount, note, created_at
        FROM repayment_changes
        WHERE loan_id = $1
        ORDER BY effective_date, id`

	rows, err = r.db.Query(ctx, repaymentSQL, loanID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rpc loan.RepaymentChange
		if err := rows.Scan(&rpc.ID, &rpc.LoanID, &rpc.EffectiveDate, &rpc.Amount, &rpc.Note, &rpc.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		tls.RepaymentChanges = append(tls.RepaymentChanges, rpc)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	extraSQL := `
        SELECT id, loan_id, payment_date, amount, note, created_at
        FROM extra_repayments
        WHERE loan_id = $1
        ORDER BY payment_date, id`

	rows, err = r.db.Query(ctx, extraSQL, loanID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var er loan.ExtraRepayment
		if err := rows.Scan(&er.ID, &er.LoanID, &er.PaymentDate, &er.Amount, &er.Note, &er.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		tls.ExtraRepayments = append(tls.ExtraRepayments, er)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	paidSQL := `
        SELECT period_number
        FROM paid_repayments
        WHERE loan_id = $1
        ORDER BY period_number`

	rows, err = r.db.Query(ctx, paidSQL, loanID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return err
		}
		tls.PaidNumbers = append(tls.PaidNumbers, n)
	}
	return rows.Err()
}

func (r *LoanRepository) AddRateChange(ctx context.Context, rc *loan.RateChange) (*loan.RateChange, error) {
	sql := `
        INSERT INTO rate_changes (loan_id, effective_date, annual_rate, adjusted_repayment, note, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`

	created := *rc
	err := r.db.QueryRow(ctx, sql, rc.LoanID, rc.EffectiveDate, rc.AnnualRate, nullDecimal(rc.AdjustedRepayment), rc.Note).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert rate change", "loan_id", rc.LoanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return &created, nil
}

func (r *LoanRepository) DeleteRateChange(ctx context.Context, loanID, changeID int64) error {
	return r.deleteTimelineRow(ctx, "rate_changes", loanID, changeID)
}

func (r *LoanRepository) AddRepaymentChange(ctx context.Context, rpc *loan.RepaymentChange) (*loan.RepaymentChange, error) {
	sql := `
        INSERT INTO repayment_changes (loan_id, effective_date, amount, note, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at`

	created := *rpc
	err := r.db.QueryRow(ctx, sql, rpc.LoanID, rpc.EffectiveDate, rpc.Amount, rpc.Note).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert repayment change", "loan_id", rpc.LoanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return &created, nil
}

func (r *LoanRepository) DeleteRepaymentChange(ctx context.Context, loanID, changeID int64) error {
	return r.deleteTimelineRow(ctx, "repayment_changes", loanID, changeID)
}

func (r *LoanRepository) AddExtraRepayment(ctx context.Context, er *loan.ExtraRepayment) (*loan.ExtraRepayment, error) {
	sql := `
        INSERT INTO extra_repayments (loan_id, payment_date, amount, note, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at`

	created := *er
	err := r.db.QueryRow(ctx, sql, er.LoanID, er.PaymentDate, er.Amount, er.Note).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert extra repayment", "loan_id", er.LoanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return &created, nil
}

func (r *LoanRepository) DeleteExtraRepayment(ctx context.Context, loanID, extraID int64) error {
	return r.deleteTimelineRow(ctx, "extra_repayments", loanID, extraID)
}

func (r *LoanRepository) deleteTimelineRow(ctx context.Context, table string, loanID, rowID int64) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND loan_id = $2`, table)

	cmdTag, err := r.db.Exec(ctx, sql, rowID, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete timeline row", "table", table, "loan_id", loanID, "row_id", rowID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s row %d for loan %d", apperrors.ErrNotFound, table, rowID, loanID)
	}
	return nil
}

func (r *LoanRepository) MarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	sql := `
        INSERT INTO paid_repayments (loan_id, period_number, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (loan_id, period_number) DO NOTHING`

	_, err := r.db.Exec(ctx, sql, loanID, periodNumber)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark period paid", "loan_id", loanID, "period", periodNumber, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) UnmarkPaid(ctx context.Context, loanID int64, periodNumber int) error {
	sql := `DELETE FROM paid_repayments WHERE loan_id = $1 AND period_number = $2`

	_, err := r.db.Exec(ctx, sql, loanID, periodNumber)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to unmark paid period", "loan_id", loanID, "period", periodNumber, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func queryStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}
		if pgErr.Code == "23503" {
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, pgErr.ConstraintName)
		}
		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
