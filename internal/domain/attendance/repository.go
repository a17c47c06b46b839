package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the read-only view payroll has over attendance.
type AttendanceRepository interface {
	// ListApprovedByEmployee returns APPROVED rows for employeeID with from <= date <= to.
	ListApprovedByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
}
