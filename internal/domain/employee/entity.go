package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the slice of the HR employee record the payroll engine reads.
// BaseSalary is nil for employees without a configured monthly salary; those
// are excluded from salary generation.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	BaseSalary   *decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasBaseSalary reports whether the employee can be processed by payroll.
func (e Employee) HasBaseSalary() bool {
	return e.BaseSalary != nil
}
