package advance

import "github.com/shopspring/decimal"

type AdvanceResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	Amount          decimal.Decimal `json:"amount"`
	EMIAmount       decimal.Decimal `json:"emi_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	RepaidAmount    decimal.Decimal `json:"repaid_amount"`
	IsSettled       bool            `json:"is_settled"`
	Status          string          `json:"status"`
}

type InstallmentResponse struct {
	ID         string          `json:"id"`
	AdvanceID  string          `json:"advance_id"`
	SalaryID   string          `json:"salary_id"`
	EmployeeID string          `json:"employee_id"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Status     string          `json:"status"`
	ApprovedBy *string         `json:"approved_by,omitempty"`
	ApprovedAt *string         `json:"approved_at,omitempty"`
}
