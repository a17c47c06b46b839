package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/shopspring/decimal"
)

type advanceRepositoryImpl struct {
	store *Store
}

func NewAdvanceRepository(store *Store) advance.AdvanceRepository {
	return &advanceRepositoryImpl{store: store}
}

// GetByIDForUpdate needs no row lock here: writers already hold the store mutex.
func (r *advanceRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (advance.AdvancePayment, error) {
	defer r.store.lock(ctx)()
	a, ok := r.store.advances[id]
	if !ok {
		return advance.AdvancePayment{}, advance.ErrAdvanceNotFound
	}
	return a, nil
}

func (r *advanceRepositoryImpl) ListOpenByEmployee(ctx context.Context, employeeID string) ([]advance.AdvancePayment, error) {
	defer r.store.lock(ctx)()
	var out []advance.AdvancePayment
	for _, a := range r.store.advances {
		if a.EmployeeID == employeeID && a.IsOpen() {
			out = append(out, a)
		}
	}
	sortAdvances(out)
	return out, nil
}

func (r *advanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]advance.AdvancePayment, error) {
	defer r.store.lock(ctx)()
	var out []advance.AdvancePayment
	for _, a := range r.store.advances {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	sortAdvances(out)
	return out, nil
}

func (r *advanceRepositoryImpl) UpdateBalance(ctx context.Context, id string, remaining decimal.Decimal, settled bool) error {
	defer r.store.lock(ctx)()
	a, ok := r.store.advances[id]
	if !ok {
		return advance.ErrAdvanceNotFound
	}
	a.RemainingAmount = remaining
	a.IsSettled = settled
	a.UpdatedAt = time.Now()
	r.store.advances[id] = a
	return nil
}

func sortAdvances(list []advance.AdvancePayment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

type installmentRepositoryImpl struct {
	store *Store
}

func NewInstallmentRepository(store *Store) advance.InstallmentRepository {
	return &installmentRepositoryImpl{store: store}
}

func (r *installmentRepositoryImpl) CreateBatch(ctx context.Context, installments []advance.Installment) ([]advance.Installment, error) {
	defer r.store.lock(ctx)()
	for i, in := range installments {
		if in.AdvanceID == "" {
			continue
		}
		for _, existing := range r.store.installments {
			if existing.AdvanceID == in.AdvanceID && existing.Month == in.Month && existing.Year == in.Year {
				return nil, advance.ErrInstallmentAlreadyExists
			}
		}
		for _, other := range installments[:i] {
			if other.AdvanceID == in.AdvanceID && other.Month == in.Month && other.Year == in.Year {
				return nil, advance.ErrInstallmentAlreadyExists
			}
		}
	}

	now := time.Now()
	out := make([]advance.Installment, 0, len(installments))
	for _, in := range installments {
		if in.ID == "" {
			in.ID = newID()
		}
		if in.CreatedAt.IsZero() {
			in.CreatedAt = now
		}
		in.UpdatedAt = now
		r.store.installments[in.ID] = in
		out = append(out, in)
	}
	return out, nil
}

func (r *installmentRepositoryImpl) GetByID(ctx context.Context, id string) (advance.Installment, error) {
	defer r.store.lock(ctx)()
	in, ok := r.store.installments[id]
	if !ok {
		return advance.Installment{}, advance.ErrInstallmentNotFound
	}
	return in, nil
}

func (r *installmentRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (advance.Installment, error) {
	return r.GetByID(ctx, id)
}

func (r *installmentRepositoryImpl) ListBySalary(ctx context.Context, salaryID string) ([]advance.Installment, error) {
	defer r.store.lock(ctx)()
	var out []advance.Installment
	for _, in := range r.store.installments {
		if in.SalaryID == salaryID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *installmentRepositoryImpl) ExistsForPeriod(ctx context.Context, advanceID string, month, year int) (bool, error) {
	defer r.store.lock(ctx)()
	for _, in := range r.store.installments {
		if in.AdvanceID == advanceID && in.Month == month && in.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *installmentRepositoryImpl) MarkApproved(ctx context.Context, id string, approvedBy *string, approvedAt time.Time) error {
	defer r.store.lock(ctx)()
	in, ok := r.store.installments[id]
	if !ok {
		return advance.ErrInstallmentNotFound
	}
	in.Status = advance.InstallmentStatusApproved
	in.ApprovedBy = approvedBy
	in.ApprovedAt = &approvedAt
	in.UpdatedAt = approvedAt
	r.store.installments[id] = in
	return nil
}

func (r *installmentRepositoryImpl) UpdateStatusBySalary(ctx context.Context, salaryID string, from, to advance.InstallmentStatus) error {
	defer r.store.lock(ctx)()
	now := time.Now()
	for id, in := range r.store.installments {
		if in.SalaryID == salaryID && in.Status == from {
			in.Status = to
			in.UpdatedAt = now
			r.store.installments[id] = in
		}
	}
	return nil
}

func (r *installmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.installments[id]; !ok {
		return advance.ErrInstallmentNotFound
	}
	delete(r.store.installments, id)
	return nil
}

func (r *installmentRepositoryImpl) DeleteBySalary(ctx context.Context, salaryID string, statuses ...advance.InstallmentStatus) error {
	defer r.store.lock(ctx)()
	for id, in := range r.store.installments {
		if in.SalaryID != salaryID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, in.Status) {
			continue
		}
		delete(r.store.installments, id)
	}
	return nil
}

func containsStatus(list []advance.InstallmentStatus, s advance.InstallmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
