package advance

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrAdvanceNotFound           = apperror.New(apperror.ErrNotFound, "advance payment not found")
	ErrInstallmentNotFound       = apperror.New(apperror.ErrNotFound, "installment not found")
	ErrAdvanceSettled            = apperror.New(apperror.ErrInvalidStateTransition, "advance payment already settled")
	ErrInstallmentAlreadyDecided = apperror.New(apperror.ErrInvalidStateTransition, "installment already approved or rejected")
	ErrInstallmentExceedsBalance = apperror.New(apperror.ErrInvalidStateTransition, "installment exceeds advance remaining amount")
	ErrInstallmentAlreadyExists  = apperror.New(apperror.ErrInvalidStateTransition, "installment already exists for advance and period")
	ErrInvalidInstallmentAmount  = apperror.New(apperror.ErrValidation, "installment amount must be positive")
	ErrInvalidInstallmentAction  = apperror.New(apperror.ErrValidation, "installment action must be APPROVE or REJECT")
)
