package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	defer r.store.lock(ctx)()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	defer r.store.lock(ctx)()
	var out []employee.Employee
	for _, e := range r.store.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type attendanceRepositoryImpl struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{store: store}
}

func (r *attendanceRepositoryImpl) ListApprovedByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	defer r.store.lock(ctx)()
	var out []attendance.AttendanceRecord
	for _, a := range r.store.attendance {
		if a.EmployeeID != employeeID || !a.IsApproved() {
			continue
		}
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type leaveRequestRepositoryImpl struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{store: store}
}

func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	defer r.store.lock(ctx)()
	var out []leave.LeaveRequest
	for _, l := range r.store.leaves {
		if l.EmployeeID != employeeID || !l.IsApproved() {
			continue
		}
		if l.EndDate.Before(from) || l.StartDate.After(to) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
