package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListApprovedByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListApprovedByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, is_present, is_half_day, is_overtime, status, created_at, updated_at
		FROM attendances
		WHERE employee_id = $1
		  AND status = $2
		  AND date BETWEEN $3 AND $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, attendance.ApprovalStatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		var att attendance.AttendanceRecord
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.Date, &att.IsPresent, &att.IsHalfDay, &att.IsOvertime,
			&att.Status, &att.CreatedAt, &att.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}
