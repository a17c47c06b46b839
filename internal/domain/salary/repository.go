package salary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SalaryRepository interface {
	// LockPeriod serializes generation for one employee and month inside the
	// current transaction.
	LockPeriod(ctx context.Context, employeeID string, month, year int) error

	Create(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	GetByID(ctx context.Context, id string) (SalaryRecord, error)
	GetByIDForUpdate(ctx context.Context, id string) (SalaryRecord, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (SalaryRecord, error)
	List(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, int64, error)
	UpdateAdvanceTotals(ctx context.Context, id string, advanceDeduction, netSalary decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status SalaryStatus, processedAt, paidAt *time.Time) error
	Delete(ctx context.Context, id string) error
}
