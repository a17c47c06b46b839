package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type installmentRepository struct {
	db *database.DB
}

func NewInstallmentRepository(db *database.DB) advance.InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = `id, advance_id, salary_id, employee_id, month, year, amount_paid, status,
	approved_by, approved_at, created_at, updated_at`

func scanInstallment(row pgx.Row) (advance.Installment, error) {
	var in advance.Installment
	err := row.Scan(
		&in.ID, &in.AdvanceID, &in.SalaryID, &in.EmployeeID, &in.Month, &in.Year, &in.AmountPaid, &in.Status,
		&in.ApprovedBy, &in.ApprovedAt, &in.CreatedAt, &in.UpdatedAt,
	)
	return in, err
}

// CreateBatch implements advance.InstallmentRepository. Rows are sent in one
// pgx batch; an empty ID gets a fresh UUIDv7.
func (r *installmentRepository) CreateBatch(ctx context.Context, installments []advance.Installment) ([]advance.Installment, error) {
	if len(installments) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO advance_installments (
			id, advance_id, salary_id, employee_id, month, year, amount_paid, status,
			approved_by, approved_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()))
		RETURNING ` + installmentColumns

	batch := &pgx.Batch{}
	for _, in := range installments {
		if in.ID == "" {
			in.ID = uuid.Must(uuid.NewV7()).String()
		}
		var createdAt *time.Time
		if !in.CreatedAt.IsZero() {
			createdAt = &in.CreatedAt
		}
		batch.Queue(query,
			in.ID, in.AdvanceID, in.SalaryID, in.EmployeeID, in.Month, in.Year, in.AmountPaid, in.Status,
			in.ApprovedBy, in.ApprovedAt, createdAt,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	created := make([]advance.Installment, 0, len(installments))
	for range installments {
		in, err := scanInstallment(results.QueryRow())
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "uk_installment_advance_period" {
				return nil, advance.ErrInstallmentAlreadyExists
			}
			return nil, fmt.Errorf("failed to create installment: %w", err)
		}
		created = append(created, in)
	}
	return created, nil
}

func (r *installmentRepository) GetByID(ctx context.Context, id string) (advance.Installment, error) {
	return r.get(ctx, `SELECT `+installmentColumns+` FROM advance_installments WHERE id = $1`, id)
}

func (r *installmentRepository) GetByIDForUpdate(ctx context.Context, id string) (advance.Installment, error) {
	return r.get(ctx, `SELECT `+installmentColumns+` FROM advance_installments WHERE id = $1 FOR UPDATE`, id)
}

func (r *installmentRepository) get(ctx context.Context, query, id string) (advance.Installment, error) {
	q := GetQuerier(ctx, r.db)

	in, err := scanInstallment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return advance.Installment{}, advance.ErrInstallmentNotFound
		}
		return advance.Installment{}, fmt.Errorf("failed to get installment: %w", err)
	}
	return in, nil
}

func (r *installmentRepository) ListBySalary(ctx context.Context, salaryID string) ([]advance.Installment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + installmentColumns + ` FROM advance_installments WHERE salary_id = $1 ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, salaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []advance.Installment
	for rows.Next() {
		in, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, in)
	}
	return installments, rows.Err()
}

func (r *installmentRepository) ExistsForPeriod(ctx context.Context, advanceID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM advance_installments WHERE advance_id = $1 AND month = $2 AND year = $3)`

	var exists bool
	if err := q.QueryRow(ctx, query, advanceID, month, year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check installment: %w", err)
	}
	return exists, nil
}

func (r *installmentRepository) MarkApproved(ctx context.Context, id string, approvedBy *string, approvedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advance_installments
		SET status = $2, approved_by = $3, approved_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	tag, err := q.Exec(ctx, query, id, advance.InstallmentStatusApproved, approvedBy, approvedAt, advance.InstallmentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to approve installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrInstallmentAlreadyDecided
	}
	return nil
}

func (r *installmentRepository) UpdateStatusBySalary(ctx context.Context, salaryID string, from, to advance.InstallmentStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE advance_installments SET status = $3, updated_at = NOW() WHERE salary_id = $1 AND status = $2`

	if _, err := q.Exec(ctx, query, salaryID, from, to); err != nil {
		return fmt.Errorf("failed to update installment status: %w", err)
	}
	return nil
}

func (r *installmentRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM advance_installments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrInstallmentNotFound
	}
	return nil
}

func (r *installmentRepository) DeleteBySalary(ctx context.Context, salaryID string, statuses ...advance.InstallmentStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM advance_installments WHERE salary_id = $1`
	args := []interface{}{salaryID}
	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, s := range statuses {
			names = append(names, string(s))
		}
		query += ` AND status = ANY($2)`
		args = append(args, names)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}
	return nil
}
