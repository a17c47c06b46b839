package salary

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GenerateMonthlyRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=9999"`
}

func (r *GenerateMonthlyRequest) Validate() error {
	return validator.Struct(r)
}

type GenerateSalaryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Year       int    `json:"year" validate:"required,min=2000,max=9999"`
}

func (r *GenerateSalaryRequest) Validate() error {
	return validator.Struct(r)
}

type SkippedEmployee struct {
	EmployeeID string     `json:"employee_id"`
	Reason     SkipReason `json:"reason"`
}

type GenerateResult struct {
	Month     int               `json:"month"`
	Year      int               `json:"year"`
	Processed int               `json:"processed"`
	Skipped   int               `json:"skipped"`
	Skips     []SkippedEmployee `json:"skips,omitempty"`
}

type GenerateSalaryResponse struct {
	Salary  *SalaryRecordResponse `json:"salary,omitempty"`
	Skipped bool                  `json:"skipped"`
	Reason  SkipReason            `json:"reason,omitempty"`
}

// ========== RECORD DTOs ==========

type DeleteSalaryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Year       int    `json:"year" validate:"required,min=2000,max=9999"`
}

func (r *DeleteSalaryRequest) Validate() error {
	return validator.Struct(r)
}

type TransitionSalaryRequest struct {
	SalaryID string `json:"-" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=PROCESSING PAID FAILED"`
}

func (r *TransitionSalaryRequest) Validate() error {
	return validator.Struct(r)
}

type DecideInstallmentRequest struct {
	SalaryID      string `json:"-" validate:"required"`
	InstallmentID string `json:"-" validate:"required"`
	Action        string `json:"action" validate:"required,oneof=APPROVE REJECT"`
	// DecidedBy is filled from the caller's token, never from the body.
	DecidedBy string `json:"-"`
}

func (r *DecideInstallmentRequest) Validate() error {
	return validator.Struct(r)
}

type SalaryRecordResponse struct {
	ID                   string                        `json:"id"`
	EmployeeID           string                        `json:"employee_id"`
	EmployeeName         *string                       `json:"employee_name,omitempty"`
	EmployeeCode         *string                       `json:"employee_code,omitempty"`
	Month                int                           `json:"month"`
	Year                 int                           `json:"year"`
	BaseSalary           decimal.Decimal               `json:"base_salary"`
	DaysInMonth          int                           `json:"days_in_month"`
	PresentDays          int                           `json:"present_days"`
	HalfDays             int                           `json:"half_days"`
	OvertimeDays         int                           `json:"overtime_days"`
	AbsentDays           int                           `json:"absent_days"`
	PresentDayEquivalent decimal.Decimal               `json:"present_day_equivalent"`
	LeaveDaysTaken       int                           `json:"leave_days_taken"`
	LeavesEarned         int                           `json:"leaves_earned"`
	PerDayRate           decimal.Decimal               `json:"per_day_rate"`
	PresentEarnings      decimal.Decimal               `json:"present_earnings"`
	LeaveSalary          decimal.Decimal               `json:"leave_salary"`
	OvertimeBonus        decimal.Decimal               `json:"overtime_bonus"`
	AdvanceDeduction     decimal.Decimal               `json:"advance_deduction"`
	NetSalary            decimal.Decimal               `json:"net_salary"`
	Status               string                        `json:"status"`
	ProcessedAt          *string                       `json:"processed_at,omitempty"`
	PaidAt               *string                       `json:"paid_at,omitempty"`
	Installments         []advance.InstallmentResponse `json:"installments,omitempty"`
}

type SalaryFilter struct {
	Month      *int    `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Year       *int    `json:"year,omitempty" validate:"omitempty,min=2000,max=9999"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING PROCESSING PAID FAILED"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

// Validate checks the filter and applies paging defaults.
func (f *SalaryFilter) Validate() error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	return nil
}

func (f SalaryFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListSalaryResponse struct {
	Data       []SalaryRecordResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}
