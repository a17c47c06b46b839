package salary

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrSalaryNotFound          = apperror.New(apperror.ErrNotFound, "salary record not found")
	ErrSalaryAlreadyExists     = apperror.New(apperror.ErrInvalidStateTransition, "salary record already exists for this period")
	ErrSalaryNotEditable       = apperror.New(apperror.ErrInvalidStateTransition, "salary record is not pending, installments cannot change")
	ErrSalaryNotDeletable      = apperror.New(apperror.ErrInvalidStateTransition, "salary record is processing or paid, cannot delete")
	ErrInvalidSalaryTransition = apperror.New(apperror.ErrInvalidStateTransition, "salary status transition not allowed")
	ErrInstallmentNotOnSalary  = apperror.New(apperror.ErrNotFound, "installment does not belong to salary record")
)
