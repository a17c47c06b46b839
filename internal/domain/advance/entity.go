package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdvanceStatus string

const (
	AdvanceStatusPending  AdvanceStatus = "PENDING"
	AdvanceStatusApproved AdvanceStatus = "APPROVED"
	AdvanceStatusRejected AdvanceStatus = "REJECTED"
)

// AdvancePayment is a cash advance paid out to an employee and recovered
// through monthly installments. RemainingAmount only ever decreases, and only
// through Repay.
type AdvancePayment struct {
	ID              string
	EmployeeID      string
	Amount          decimal.Decimal
	EMIAmount       decimal.Decimal
	RemainingAmount decimal.Decimal
	IsSettled       bool
	Status          AdvanceStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen reports whether installments may still be suggested against the advance.
func (a AdvancePayment) IsOpen() bool {
	return a.Status == AdvanceStatusApproved && !a.IsSettled
}

// Repay returns the advance after applying an approved installment of amount.
// The advance settles when nothing remains.
func (a AdvancePayment) Repay(amount decimal.Decimal) (AdvancePayment, error) {
	if !amount.IsPositive() {
		return a, ErrInvalidInstallmentAmount
	}
	if a.IsSettled {
		return a, ErrAdvanceSettled
	}
	if amount.GreaterThan(a.RemainingAmount) {
		return a, ErrInstallmentExceedsBalance
	}

	a.RemainingAmount = a.RemainingAmount.Sub(amount)
	if !a.RemainingAmount.IsPositive() {
		a.RemainingAmount = decimal.Zero
		a.IsSettled = true
	}
	return a, nil
}

// Installment is one repayment of an advance deducted from a monthly salary.
type Installment struct {
	ID         string
	AdvanceID  string
	SalaryID   string
	EmployeeID string
	Month      int
	Year       int
	AmountPaid decimal.Decimal
	Status     InstallmentStatus
	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SumApplied totals the installments whose amount has been taken from their
// advance (APPROVED or PAID).
func SumApplied(installments []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, in := range installments {
		if in.Status.IsApplied() {
			total = total.Add(in.AmountPaid)
		}
	}
	return total
}
