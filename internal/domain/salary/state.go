package salary

type SalaryStatus string

const (
	SalaryStatusPending    SalaryStatus = "PENDING"
	SalaryStatusProcessing SalaryStatus = "PROCESSING"
	SalaryStatusPaid       SalaryStatus = "PAID"
	SalaryStatusFailed     SalaryStatus = "FAILED"
)

var salaryTransitions = map[SalaryStatus][]SalaryStatus{
	SalaryStatusPending:    {SalaryStatusProcessing},
	SalaryStatusProcessing: {SalaryStatusPaid, SalaryStatusFailed},
	SalaryStatusFailed:     {SalaryStatusProcessing},
}

func (s SalaryStatus) IsValid() bool {
	switch s {
	case SalaryStatusPending, SalaryStatusProcessing, SalaryStatusPaid, SalaryStatusFailed:
		return true
	}
	return false
}

// IsEditable reports whether attendance figures and installments may change.
func (s SalaryStatus) IsEditable() bool {
	return s == SalaryStatusPending
}

// IsDeletable reports whether the record may be removed. Records that are
// being paid out or already paid stay.
func (s SalaryStatus) IsDeletable() bool {
	return s == SalaryStatusPending || s == SalaryStatusFailed
}

func (s SalaryStatus) CanTransitionTo(next SalaryStatus) bool {
	for _, allowed := range salaryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when s -> next is allowed.
func (s SalaryStatus) Transition(next SalaryStatus) (SalaryStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, ErrInvalidSalaryTransition
	}
	return next, nil
}

// RequireEditable guards every installment change.
func (s SalaryStatus) RequireEditable() error {
	if !s.IsEditable() {
		return ErrSalaryNotEditable
	}
	return nil
}
