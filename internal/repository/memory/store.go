// Package memory implements the payroll repositories over an in-process
// store. Transactions serialize on the store mutex and restore a snapshot
// when the unit of work fails.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	employees    map[string]employee.Employee
	attendance   map[string]attendance.AttendanceRecord
	leaves       map[string]leave.LeaveRequest
	advances     map[string]advance.AdvancePayment
	salaries     map[string]salary.SalaryRecord
	installments map[string]advance.Installment
}

func NewStore() *Store {
	return &Store{
		employees:    make(map[string]employee.Employee),
		attendance:   make(map[string]attendance.AttendanceRecord),
		leaves:       make(map[string]leave.LeaveRequest),
		advances:     make(map[string]advance.AdvancePayment),
		salaries:     make(map[string]salary.SalaryRecord),
		installments: make(map[string]advance.Installment),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store mutex unless ctx already runs inside one of this
// store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	advances     map[string]advance.AdvancePayment
	salaries     map[string]salary.SalaryRecord
	installments map[string]advance.Installment
}

// Collaborator data is read-only to payroll, so only payroll-owned tables are captured.
func (s *Store) snapshot() snapshot {
	return snapshot{
		advances:     cloneMap(s.advances),
		salaries:     cloneMap(s.salaries),
		installments: cloneMap(s.installments),
	}
}

func (s *Store) restore(snap snapshot) {
	s.advances = snap.advances
	s.salaries = snap.salaries
	s.installments = snap.installments
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Transactor is the database.Transactor of a Store.
type Transactor struct {
	store *Store
}

func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := t.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			slog.Error("transaction rolled back after panic", "panic", p)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	if err = ctx.Err(); err != nil {
		s.restore(snap)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
