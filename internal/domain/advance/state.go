package advance

type InstallmentStatus string

const (
	InstallmentStatusPending  InstallmentStatus = "PENDING"
	InstallmentStatusApproved InstallmentStatus = "APPROVED"
	InstallmentStatusRejected InstallmentStatus = "REJECTED"
	InstallmentStatusPaid     InstallmentStatus = "PAID"
)

// InstallmentAction is an operator decision on a suggested installment.
type InstallmentAction string

const (
	InstallmentActionApprove InstallmentAction = "APPROVE"
	InstallmentActionReject  InstallmentAction = "REJECT"
)

var installmentTransitions = map[InstallmentStatus][]InstallmentStatus{
	InstallmentStatusPending:  {InstallmentStatusApproved, InstallmentStatusRejected},
	InstallmentStatusApproved: {InstallmentStatusPaid},
}

// CanTransitionTo reports whether the installment lifecycle allows s -> next.
func (s InstallmentStatus) CanTransitionTo(next InstallmentStatus) bool {
	for _, allowed := range installmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when s -> next is allowed.
func (s InstallmentStatus) Transition(next InstallmentStatus) (InstallmentStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, ErrInstallmentAlreadyDecided
	}
	return next, nil
}

// Decide maps an operator action onto the installment lifecycle.
func (s InstallmentStatus) Decide(action InstallmentAction) (InstallmentStatus, error) {
	switch action {
	case InstallmentActionApprove:
		return s.Transition(InstallmentStatusApproved)
	case InstallmentActionReject:
		return s.Transition(InstallmentStatusRejected)
	default:
		return s, ErrInvalidInstallmentAction
	}
}

// IsApplied reports whether the amount has already been deducted from the advance.
func (s InstallmentStatus) IsApplied() bool {
	return s == InstallmentStatusApproved || s == InstallmentStatusPaid
}
