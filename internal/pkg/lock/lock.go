// Package lock provides keyed mutual exclusion for payroll writes. Generation
// serializes per employee and month; installment approval serializes per
// advance.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive access to a key until release is called.
// Acquire blocks until the key is free or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SalaryKey guards the create-or-replace sequence for one salary period.
func SalaryKey(employeeID string, month, year int) string {
	return fmt.Sprintf("payroll:salary:%s:%04d-%02d", employeeID, year, month)
}

// AdvanceKey guards balance changes of one advance.
func AdvanceKey(advanceID string) string {
	return "payroll:advance:" + advanceID
}
