package advance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceRepository is the read+write view payroll has over advances. Only
// balance and settled flag are ever written.
type AdvanceRepository interface {
	GetByIDForUpdate(ctx context.Context, id string) (AdvancePayment, error)
	ListOpenByEmployee(ctx context.Context, employeeID string) ([]AdvancePayment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]AdvancePayment, error)
	UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, settled bool) error
}

type InstallmentRepository interface {
	// CreateBatch inserts installments, keeping any preset ID and approval stamp.
	CreateBatch(ctx context.Context, installments []Installment) ([]Installment, error)
	GetByID(ctx context.Context, id string) (Installment, error)
	GetByIDForUpdate(ctx context.Context, id string) (Installment, error)
	ListBySalary(ctx context.Context, salaryID string) ([]Installment, error)
	ExistsForPeriod(ctx context.Context, advanceID string, month, year int) (bool, error)
	MarkApproved(ctx context.Context, id string, approvedBy *string, approvedAt time.Time) error
	UpdateStatusBySalary(ctx context.Context, salaryID string, from, to InstallmentStatus) error
	Delete(ctx context.Context, id string) error
	// DeleteBySalary removes the salary's installments; with no statuses given it removes all of them.
	DeleteBySalary(ctx context.Context, salaryID string, statuses ...InstallmentStatus) error
}
