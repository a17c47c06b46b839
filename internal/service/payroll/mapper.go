package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func mapToSalaryResponse(r salary.SalaryRecord) salary.SalaryRecordResponse {
	installments := make([]advance.InstallmentResponse, 0, len(r.Installments))
	for _, in := range r.Installments {
		installments = append(installments, mapToInstallmentResponse(in))
	}

	return salary.SalaryRecordResponse{
		ID:                   r.ID,
		EmployeeID:           r.EmployeeID,
		EmployeeName:         r.EmployeeName,
		EmployeeCode:         r.EmployeeCode,
		Month:                r.Month,
		Year:                 r.Year,
		BaseSalary:           r.BaseSalary,
		DaysInMonth:          r.DaysInMonth,
		PresentDays:          r.PresentDays,
		HalfDays:             r.HalfDays,
		OvertimeDays:         r.OvertimeDays,
		AbsentDays:           r.AbsentDays,
		PresentDayEquivalent: r.PresentDayEquivalent,
		LeaveDaysTaken:       r.LeaveDaysTaken,
		LeavesEarned:         r.LeavesEarned,
		PerDayRate:           r.PerDayRate,
		PresentEarnings:      r.PresentEarnings,
		LeaveSalary:          r.LeaveSalary,
		OvertimeBonus:        r.OvertimeBonus,
		AdvanceDeduction:     r.AdvanceDeduction,
		NetSalary:            r.NetSalary,
		Status:               string(r.Status),
		ProcessedAt:          formatTime(r.ProcessedAt),
		PaidAt:               formatTime(r.PaidAt),
		Installments:         installments,
	}
}

func mapToSalaryResponses(records []salary.SalaryRecord) []salary.SalaryRecordResponse {
	result := make([]salary.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToSalaryResponse(r))
	}
	return result
}

func mapToInstallmentResponse(in advance.Installment) advance.InstallmentResponse {
	return advance.InstallmentResponse{
		ID:         in.ID,
		AdvanceID:  in.AdvanceID,
		SalaryID:   in.SalaryID,
		EmployeeID: in.EmployeeID,
		Month:      in.Month,
		Year:       in.Year,
		AmountPaid: in.AmountPaid,
		Status:     string(in.Status),
		ApprovedBy: in.ApprovedBy,
		ApprovedAt: formatTime(in.ApprovedAt),
	}
}

func mapToAdvanceResponse(a advance.AdvancePayment) advance.AdvanceResponse {
	return advance.AdvanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		Amount:          a.Amount,
		EMIAmount:       a.EMIAmount,
		RemainingAmount: a.RemainingAmount,
		RepaidAmount:    a.Amount.Sub(a.RemainingAmount),
		IsSettled:       a.IsSettled,
		Status:          string(a.Status),
	}
}
