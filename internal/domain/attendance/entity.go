package attendance

import (
	"time"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// AttendanceRecord is one attendance row as captured and approved by the
// attendance subsystem. A row is never both half-day and overtime.
type AttendanceRecord struct {
	ID         string
	EmployeeID string
	Date       time.Time
	IsPresent  bool
	IsHalfDay  bool
	IsOvertime bool
	Status     ApprovalStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a AttendanceRecord) IsApproved() bool {
	return a.Status == ApprovalStatusApproved
}
