package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	sr.id, sr.employee_id, sr.month, sr.year, sr.base_salary,
	sr.days_in_month, sr.present_days, sr.half_days, sr.overtime_days, sr.absent_days,
	sr.present_day_equivalent, sr.leave_days_taken, sr.leaves_earned,
	sr.per_day_rate, sr.present_earnings, sr.leave_salary, sr.overtime_bonus,
	sr.advance_deduction, sr.net_salary, sr.status, sr.processed_at, sr.paid_at,
	sr.created_at, sr.updated_at,
	e.full_name, e.employee_code`

func scanSalary(row pgx.Row) (salary.SalaryRecord, error) {
	var rec salary.SalaryRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &rec.BaseSalary,
		&rec.DaysInMonth, &rec.PresentDays, &rec.HalfDays, &rec.OvertimeDays, &rec.AbsentDays,
		&rec.PresentDayEquivalent, &rec.LeaveDaysTaken, &rec.LeavesEarned,
		&rec.PerDayRate, &rec.PresentEarnings, &rec.LeaveSalary, &rec.OvertimeBonus,
		&rec.AdvanceDeduction, &rec.NetSalary, &rec.Status, &rec.ProcessedAt, &rec.PaidAt,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	return rec, err
}

// LockPeriod takes a transaction-scoped advisory lock on the period key. It
// blocks concurrent generation across instances even before any row exists.
func (r *salaryRepository) LockPeriod(ctx context.Context, employeeID string, month, year int) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lock.SalaryKey(employeeID, month, year)); err != nil {
		return fmt.Errorf("failed to lock salary period: %w", err)
	}
	return nil
}

func (r *salaryRepository) Create(ctx context.Context, record salary.SalaryRecord) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_records (
			employee_id, month, year, base_salary,
			days_in_month, present_days, half_days, overtime_days, absent_days,
			present_day_equivalent, leave_days_taken, leaves_earned,
			per_day_rate, present_earnings, leave_salary, overtime_bonus,
			advance_deduction, net_salary, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Month, record.Year, record.BaseSalary,
		record.DaysInMonth, record.PresentDays, record.HalfDays, record.OvertimeDays, record.AbsentDays,
		record.PresentDayEquivalent, record.LeaveDaysTaken, record.LeavesEarned,
		record.PerDayRate, record.PresentEarnings, record.LeaveSalary, record.OvertimeBonus,
		record.AdvanceDeduction, record.NetSalary, record.Status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "uk_salary_employee_period" {
			return salary.SalaryRecord{}, salary.ErrSalaryAlreadyExists
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *salaryRepository) GetByID(ctx context.Context, id string) (salary.SalaryRecord, error) {
	return r.get(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_records sr
		JOIN employees e ON sr.employee_id = e.id
		WHERE sr.id = $1
	`, id)
}

func (r *salaryRepository) GetByIDForUpdate(ctx context.Context, id string) (salary.SalaryRecord, error) {
	return r.get(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_records sr
		JOIN employees e ON sr.employee_id = e.id
		WHERE sr.id = $1
		FOR UPDATE OF sr
	`, id)
}

func (r *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (salary.SalaryRecord, error) {
	return r.get(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_records sr
		JOIN employees e ON sr.employee_id = e.id
		WHERE sr.employee_id = $1 AND sr.month = $2 AND sr.year = $3
		FOR UPDATE OF sr
	`, employeeID, month, year)
}

func (r *salaryRepository) get(ctx context.Context, query string, args ...interface{}) (salary.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanSalary(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalaryRecord{}, salary.ErrSalaryNotFound
		}
		return salary.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return rec, nil
}

func (r *salaryRepository) List(ctx context.Context, filter salary.SalaryFilter) ([]salary.SalaryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM salary_records sr
		JOIN employees e ON sr.employee_id = e.id
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND sr.month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND sr.year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND sr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND sr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY sr.year DESC, sr.month DESC, sr.employee_id
		LIMIT $%d OFFSET $%d
	`, salaryColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []salary.SalaryRecord
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}

	return records, totalCount, rows.Err()
}

func (r *salaryRepository) UpdateAdvanceTotals(ctx context.Context, id string, advanceDeduction, netSalary decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET advance_deduction = $2, net_salary = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`

	tag, err := q.Exec(ctx, query, id, advanceDeduction, netSalary, salary.SalaryStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update salary totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrSalaryNotEditable
	}
	return nil
}

func (r *salaryRepository) UpdateStatus(ctx context.Context, id string, status salary.SalaryStatus, processedAt, paidAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET status = $2, processed_at = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status, processedAt, paidAt)
	if err != nil {
		return fmt.Errorf("failed to update salary status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrSalaryNotFound
	}
	return nil
}

func (r *salaryRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salary.ErrSalaryNotFound
	}
	return nil
}
