package employee

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.ErrNotFound, "employee not found")
)
