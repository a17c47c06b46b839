package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListApprovedOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, start_date, end_date, status, created_at, updated_at
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = $2
		  AND start_date <= $4
		  AND end_date >= $3
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID, leave.LeaveRequestStatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var lr leave.LeaveRequest
		if err := rows.Scan(&lr.ID, &lr.EmployeeID, &lr.StartDate, &lr.EndDate, &lr.Status, &lr.CreatedAt, &lr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}

	return requests, rows.Err()
}
