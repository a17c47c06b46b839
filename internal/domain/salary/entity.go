package salary

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/shopspring/decimal"
)

// SalaryRecord is the persisted result of one generation pass for an
// employee and calendar month. Attendance-derived fields are written once at
// generation; only AdvanceDeduction, NetSalary and Status change afterwards.
type SalaryRecord struct {
	ID         string
	EmployeeID string
	Month      int
	Year       int
	BaseSalary decimal.Decimal

	DaysInMonth          int
	PresentDays          int
	HalfDays             int
	OvertimeDays         int
	AbsentDays           int
	PresentDayEquivalent decimal.Decimal
	LeaveDaysTaken       int
	LeavesEarned         int

	PerDayRate       decimal.Decimal
	PresentEarnings  decimal.Decimal
	LeaveSalary      decimal.Decimal
	OvertimeBonus    decimal.Decimal
	AdvanceDeduction decimal.Decimal
	NetSalary        decimal.Decimal

	Status      SalaryStatus
	ProcessedAt *time.Time
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Installments []advance.Installment
}

// GrossEarnings is everything the record credits before advance repayment.
func (r SalaryRecord) GrossEarnings() decimal.Decimal {
	return r.PresentEarnings.Add(r.LeaveSalary).Add(r.OvertimeBonus)
}

// WithAdvanceDeduction returns the record with deduction applied and net
// salary rederived from the stored earnings.
func (r SalaryRecord) WithAdvanceDeduction(deduction decimal.Decimal) SalaryRecord {
	r.AdvanceDeduction = deduction.Round(2)
	r.NetSalary = NetSalary(r.PresentEarnings, r.LeaveSalary, r.OvertimeBonus, r.AdvanceDeduction)
	return r
}

// NetSalary is presentEarnings + leaveSalary + overtimeBonus - advanceDeduction.
// Generation and recalculation both go through it.
func NetSalary(presentEarnings, leaveSalary, overtimeBonus, advanceDeduction decimal.Decimal) decimal.Decimal {
	return presentEarnings.Add(leaveSalary).Add(overtimeBonus).Sub(advanceDeduction).Round(2)
}

// SkipReason explains why generation left an employee untouched.
type SkipReason string

const (
	SkipReasonNoBaseSalary     SkipReason = "no_base_salary"
	SkipReasonAlreadyProcessed SkipReason = "already_processed"
	SkipReasonInactive         SkipReason = "inactive"
)
