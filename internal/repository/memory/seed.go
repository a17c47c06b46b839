package memory

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

// The Add* helpers stand in for the collaborator subsystems that own this
// data. IDs are generated when empty.

func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	s.employees[e.ID] = e
	return e
}

func (s *Store) AddAttendance(records ...attendance.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = newID()
		}
		s.attendance[r.ID] = r
	}
}

func (s *Store) AddLeaveRequest(requests ...leave.LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range requests {
		if r.ID == "" {
			r.ID = newID()
		}
		s.leaves[r.ID] = r
	}
}

func (s *Store) AddAdvance(a advance.AdvancePayment) advance.AdvancePayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	s.advances[a.ID] = a
	return a
}
