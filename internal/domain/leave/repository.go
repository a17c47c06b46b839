package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApprovedOverlapping returns APPROVED requests of employeeID whose
	// [start, end] range intersects [from, to].
	ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}
