package salary

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
)

type SalaryService interface {
	// Generation
	GenerateMonthlySalaries(ctx context.Context, req GenerateMonthlyRequest) (GenerateResult, error)
	GenerateSalary(ctx context.Context, req GenerateSalaryRequest) (GenerateSalaryResponse, error)

	// Records
	GetSalary(ctx context.Context, id string) (SalaryRecordResponse, error)
	ListSalaries(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)
	DeleteSalary(ctx context.Context, req DeleteSalaryRequest) error
	TransitionSalary(ctx context.Context, req TransitionSalaryRequest) (SalaryRecordResponse, error)
	RecalculateSalary(ctx context.Context, id string) (SalaryRecordResponse, error)

	// Installments
	DecideInstallment(ctx context.Context, req DecideInstallmentRequest) (SalaryRecordResponse, error)

	// Advances
	ListAdvances(ctx context.Context, employeeID string) ([]advance.AdvanceResponse, error)
}
