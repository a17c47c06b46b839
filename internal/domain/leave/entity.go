package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "PENDING"
	LeaveRequestStatusApproved LeaveRequestStatus = "APPROVED"
	LeaveRequestStatusRejected LeaveRequestStatus = "REJECTED"
)

// LeaveRequest is an approved or pending leave range. StartDate and EndDate
// are both inclusive calendar dates.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Status     LeaveRequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (l LeaveRequest) IsApproved() bool {
	return l.Status == LeaveRequestStatusApproved
}
