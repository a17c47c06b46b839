package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `id, employee_id, amount, emi_amount, remaining_amount, is_settled, status, created_at, updated_at`

func scanAdvance(row pgx.Row) (advance.AdvancePayment, error) {
	var a advance.AdvancePayment
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Amount, &a.EMIAmount, &a.RemainingAmount,
		&a.IsSettled, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *advanceRepository) GetByIDForUpdate(ctx context.Context, id string) (advance.AdvancePayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advance_payments WHERE id = $1 FOR UPDATE`

	a, err := scanAdvance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.AdvancePayment{}, advance.ErrAdvanceNotFound
		}
		return advance.AdvancePayment{}, fmt.Errorf("failed to get advance payment: %w", err)
	}
	return a, nil
}

func (r *advanceRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]advance.AdvancePayment, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM advance_payments
		WHERE employee_id = $1 AND status = $2 AND is_settled = false
		ORDER BY created_at, id
	`
	return r.list(ctx, query, employeeID, advance.AdvanceStatusApproved)
}

func (r *advanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]advance.AdvancePayment, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM advance_payments
		WHERE employee_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, employeeID)
}

func (r *advanceRepository) list(ctx context.Context, query string, args ...interface{}) ([]advance.AdvancePayment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advance payments: %w", err)
	}
	defer rows.Close()

	var advances []advance.AdvancePayment
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance payment: %w", err)
		}
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

// UpdateBalance only ever lowers remaining_amount; the WHERE clause refuses an increase.
func (r *advanceRepository) UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, settled bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advance_payments
		SET remaining_amount = $2, is_settled = $3, updated_at = NOW()
		WHERE id = $1 AND remaining_amount >= $2
	`

	tag, err := q.Exec(ctx, query, id, remaining, settled)
	if err != nil {
		return fmt.Errorf("failed to update advance balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrAdvanceNotFound
	}
	return nil
}
