package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/shopspring/decimal"
)

type salaryRepositoryImpl struct {
	store *Store
}

func NewSalaryRepository(store *Store) salary.SalaryRepository {
	return &salaryRepositoryImpl{store: store}
}

// LockPeriod is a no-op: transactions already hold the store mutex.
func (r *salaryRepositoryImpl) LockPeriod(ctx context.Context, employeeID string, month, year int) error {
	return nil
}

func (r *salaryRepositoryImpl) Create(ctx context.Context, record salary.SalaryRecord) (salary.SalaryRecord, error) {
	defer r.store.lock(ctx)()
	for _, existing := range r.store.salaries {
		if existing.EmployeeID == record.EmployeeID && existing.Month == record.Month && existing.Year == record.Year {
			return salary.SalaryRecord{}, salary.ErrSalaryAlreadyExists
		}
	}

	if record.ID == "" {
		record.ID = newID()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Installments = nil
	record.EmployeeName = nil
	record.EmployeeCode = nil
	r.store.salaries[record.ID] = record
	return r.withEmployee(record), nil
}

func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (salary.SalaryRecord, error) {
	defer r.store.lock(ctx)()
	rec, ok := r.store.salaries[id]
	if !ok {
		return salary.SalaryRecord{}, salary.ErrSalaryNotFound
	}
	return r.withEmployee(rec), nil
}

func (r *salaryRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (salary.SalaryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *salaryRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (salary.SalaryRecord, error) {
	defer r.store.lock(ctx)()
	for _, rec := range r.store.salaries {
		if rec.EmployeeID == employeeID && rec.Month == month && rec.Year == year {
			return r.withEmployee(rec), nil
		}
	}
	return salary.SalaryRecord{}, salary.ErrSalaryNotFound
}

func (r *salaryRepositoryImpl) List(ctx context.Context, filter salary.SalaryFilter) ([]salary.SalaryRecord, int64, error) {
	defer r.store.lock(ctx)()
	var matched []salary.SalaryRecord
	for _, rec := range r.store.salaries {
		if filter.Month != nil && rec.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && rec.Year != *filter.Year {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		matched = append(matched, r.withEmployee(rec))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.EmployeeID < b.EmployeeID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *salaryRepositoryImpl) UpdateAdvanceTotals(ctx context.Context, id string, advanceDeduction, netSalary decimal.Decimal) error {
	defer r.store.lock(ctx)()
	rec, ok := r.store.salaries[id]
	if !ok {
		return salary.ErrSalaryNotFound
	}
	rec.AdvanceDeduction = advanceDeduction
	rec.NetSalary = netSalary
	rec.UpdatedAt = time.Now()
	r.store.salaries[id] = rec
	return nil
}

func (r *salaryRepositoryImpl) UpdateStatus(ctx context.Context, id string, status salary.SalaryStatus, processedAt, paidAt *time.Time) error {
	defer r.store.lock(ctx)()
	rec, ok := r.store.salaries[id]
	if !ok {
		return salary.ErrSalaryNotFound
	}
	rec.Status = status
	rec.ProcessedAt = processedAt
	rec.PaidAt = paidAt
	rec.UpdatedAt = time.Now()
	r.store.salaries[id] = rec
	return nil
}

func (r *salaryRepositoryImpl) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.salaries[id]; !ok {
		return salary.ErrSalaryNotFound
	}
	for _, in := range r.store.installments {
		if in.SalaryID == id {
			return fmt.Errorf("delete salary %s: installments still reference it", id)
		}
	}
	delete(r.store.salaries, id)
	return nil
}

// withEmployee fills the joined employee fields. Callers hold the store mutex.
func (r *salaryRepositoryImpl) withEmployee(rec salary.SalaryRecord) salary.SalaryRecord {
	if e, ok := r.store.employees[rec.EmployeeID]; ok {
		name, code := e.FullName, e.EmployeeCode
		rec.EmployeeName = &name
		rec.EmployeeCode = &code
	}
	return rec
}
