package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultConcurrency = 4

type PayrollServiceImpl struct {
	tx              database.Transactor
	salaryRepo      salary.SalaryRepository
	installmentRepo advance.InstallmentRepository
	advanceRepo     advance.AdvanceRepository
	employeeRepo    employee.EmployeeRepository
	attendanceRepo  attendance.AttendanceRepository
	leaveRepo       leave.LeaveRequestRepository
	locker          lock.Locker

	logger      *slog.Logger
	concurrency int
	now         func() time.Time
	runs        singleflight.Group
}

type Option func(*PayrollServiceImpl)

// WithConcurrency bounds how many employees are generated in parallel.
func WithConcurrency(n int) Option {
	return func(s *PayrollServiceImpl) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *PayrollServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the clock used for approval and payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *PayrollServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

func NewPayrollService(
	tx database.Transactor,
	salaryRepo salary.SalaryRepository,
	installmentRepo advance.InstallmentRepository,
	advanceRepo advance.AdvanceRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	locker lock.Locker,
	opts ...Option,
) salary.SalaryService {
	s := &PayrollServiceImpl{
		tx:              tx,
		salaryRepo:      salaryRepo,
		installmentRepo: installmentRepo,
		advanceRepo:     advanceRepo,
		employeeRepo:    employeeRepo,
		attendanceRepo:  attendanceRepo,
		leaveRepo:       leaveRepo,
		locker:          locker,
		logger:          slog.Default(),
		concurrency:     defaultConcurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========== GENERATION ==========

type generation struct {
	record  salary.SalaryRecord
	skipped bool
	reason  salary.SkipReason
}

func (s *PayrollServiceImpl) GenerateMonthlySalaries(ctx context.Context, req salary.GenerateMonthlyRequest) (salary.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return salary.GenerateResult{}, err
	}
	period, err := NewPeriod(req.Month, req.Year)
	if err != nil {
		return salary.GenerateResult{}, err
	}

	// Concurrent runs for the same month share one pass. The pass is detached
	// from any single caller, so a caller that goes away only stops waiting.
	runCtx := context.WithoutCancel(ctx)
	ch := s.runs.DoChan(period.String(), func() (interface{}, error) {
		return s.generateMonthly(runCtx, period)
	})

	select {
	case <-ctx.Done():
		return salary.GenerateResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return salary.GenerateResult{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight salary generation", "period", period.String())
		}
		return res.Val.(salary.GenerateResult), nil
	}
}

func (s *PayrollServiceImpl) generateMonthly(ctx context.Context, period Period) (salary.GenerateResult, error) {
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return salary.GenerateResult{}, fmt.Errorf("failed to get employees: %w", err)
	}

	outcomes := make([]generation, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, emp := range employees {
		g.Go(func() error {
			out, err := s.generateForEmployee(gctx, emp, period)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return salary.GenerateResult{}, fmt.Errorf("generate salaries for %s: %w", period, err)
	}

	result := salary.GenerateResult{Month: period.Month, Year: period.Year}
	for i, out := range outcomes {
		if out.skipped {
			result.Skipped++
			result.Skips = append(result.Skips, salary.SkippedEmployee{EmployeeID: employees[i].ID, Reason: out.reason})
			continue
		}
		result.Processed++
	}

	s.logger.Info("salary generation finished",
		"month", period.Month,
		"year", period.Year,
		"processed", result.Processed,
		"skipped", result.Skipped,
	)
	return result, nil
}

func (s *PayrollServiceImpl) GenerateSalary(ctx context.Context, req salary.GenerateSalaryRequest) (salary.GenerateSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.GenerateSalaryResponse{}, err
	}
	period, err := NewPeriod(req.Month, req.Year)
	if err != nil {
		return salary.GenerateSalaryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return salary.GenerateSalaryResponse{}, err
	}
	if !emp.IsActive {
		s.logger.Debug("skipping employee", "employee_id", emp.ID, "reason", salary.SkipReasonInactive)
		return salary.GenerateSalaryResponse{Skipped: true, Reason: salary.SkipReasonInactive}, nil
	}

	out, err := s.generateForEmployee(ctx, emp, period)
	if err != nil {
		return salary.GenerateSalaryResponse{}, err
	}
	if out.skipped {
		return salary.GenerateSalaryResponse{Skipped: true, Reason: out.reason}, nil
	}

	resp := mapToSalaryResponse(out.record)
	return salary.GenerateSalaryResponse{Salary: &resp}, nil
}

// generateForEmployee builds one PENDING salary record with its suggested
// installments, replacing a prior PENDING record for the same month.
func (s *PayrollServiceImpl) generateForEmployee(ctx context.Context, emp employee.Employee, period Period) (generation, error) {
	if !emp.HasBaseSalary() {
		s.logger.Debug("skipping employee", "employee_id", emp.ID, "reason", salary.SkipReasonNoBaseSalary)
		return generation{skipped: true, reason: salary.SkipReasonNoBaseSalary}, nil
	}

	release, err := s.locker.Acquire(ctx, lock.SalaryKey(emp.ID, period.Month, period.Year))
	if err != nil {
		return generation{}, err
	}
	defer release()

	var out generation
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.salaryRepo.LockPeriod(ctx, emp.ID, period.Month, period.Year); err != nil {
			return err
		}

		carried, skip, err := s.clearPendingRecord(ctx, emp.ID, period)
		if err != nil {
			return err
		}
		if skip {
			out = generation{skipped: true, reason: salary.SkipReasonAlreadyProcessed}
			return nil
		}

		rows, err := s.attendanceRepo.ListApprovedByEmployee(ctx, emp.ID, period.Start(), period.End())
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		leaves, err := s.leaveRepo.ListApprovedOverlapping(ctx, emp.ID, period.Start(), period.End())
		if err != nil {
			return fmt.Errorf("failed to get leave requests: %w", err)
		}

		summary := AggregateAttendance(period, rows)
		earned := LeavesEarned(summary.PresentDayEquivalent)
		earnings := DeriveEarnings(*emp.BaseSalary, period.DaysInMonth(), summary, earned)

		record := salary.SalaryRecord{
			EmployeeID:           emp.ID,
			Month:                period.Month,
			Year:                 period.Year,
			BaseSalary:           *emp.BaseSalary,
			DaysInMonth:          period.DaysInMonth(),
			PresentDays:          summary.PresentDays,
			HalfDays:             summary.HalfDays,
			OvertimeDays:         summary.OvertimeDays,
			AbsentDays:           summary.AbsentDays,
			PresentDayEquivalent: summary.PresentDayEquivalent,
			LeaveDaysTaken:       LeaveDaysTaken(period, leaves),
			LeavesEarned:         earned,
			PerDayRate:           earnings.PerDayRate.Round(6),
			PresentEarnings:      earnings.PresentEarnings,
			LeaveSalary:          earnings.LeaveSalary,
			OvertimeBonus:        earnings.OvertimeBonus,
			Status:               salary.SalaryStatusPending,
		}.WithAdvanceDeduction(advance.SumApplied(carried))

		created, err := s.salaryRepo.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create salary record: %w", err)
		}

		suggested, err := s.suggestInstallments(ctx, emp.ID, created.ID, period, carried)
		if err != nil {
			return err
		}

		batch := make([]advance.Installment, 0, len(carried)+len(suggested))
		for _, in := range carried {
			in.SalaryID = created.ID
			batch = append(batch, in)
		}
		batch = append(batch, suggested...)

		if len(batch) > 0 {
			created.Installments, err = s.installmentRepo.CreateBatch(ctx, batch)
			if err != nil {
				return fmt.Errorf("failed to create installments: %w", err)
			}
		}

		out = generation{record: created}
		return nil
	})
	if err != nil {
		return generation{}, err
	}

	if out.skipped {
		s.logger.Debug("skipping employee", "employee_id", emp.ID, "reason", out.reason)
	}
	return out, nil
}

// clearPendingRecord removes a PENDING record for the period and returns the
// APPROVED installments it carried, which stay applied to their advances and
// move to the regenerated record. skip is true when a non-PENDING record exists.
func (s *PayrollServiceImpl) clearPendingRecord(ctx context.Context, employeeID string, period Period) (carried []advance.Installment, skip bool, err error) {
	existing, err := s.salaryRepo.GetByEmployeePeriod(ctx, employeeID, period.Month, period.Year)
	if errors.Is(err, salary.ErrSalaryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing salary record: %w", err)
	}
	if !existing.Status.IsEditable() {
		return nil, true, nil
	}

	installments, err := s.installmentRepo.ListBySalary(ctx, existing.ID)
	if err != nil {
		return nil, false, err
	}
	for _, in := range installments {
		if in.Status == advance.InstallmentStatusApproved {
			carried = append(carried, in)
		}
	}

	if err := s.installmentRepo.DeleteBySalary(ctx, existing.ID); err != nil {
		return nil, false, fmt.Errorf("failed to delete installments: %w", err)
	}
	if err := s.salaryRepo.Delete(ctx, existing.ID); err != nil {
		return nil, false, fmt.Errorf("failed to delete pending salary record: %w", err)
	}
	return carried, false, nil
}

// suggestInstallments proposes one PENDING installment per open advance that
// has none for the period yet.
func (s *PayrollServiceImpl) suggestInstallments(ctx context.Context, employeeID, salaryID string, period Period, carried []advance.Installment) ([]advance.Installment, error) {
	advances, err := s.advanceRepo.ListOpenByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get advances: %w", err)
	}

	covered := make(map[string]bool, len(carried))
	for _, in := range carried {
		covered[in.AdvanceID] = true
	}

	var suggested []advance.Installment
	for _, adv := range advances {
		if covered[adv.ID] {
			continue
		}
		exists, err := s.installmentRepo.ExistsForPeriod(ctx, adv.ID, period.Month, period.Year)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		amount, ok := SuggestInstallment(adv)
		if !ok {
			continue
		}
		suggested = append(suggested, advance.Installment{
			AdvanceID:  adv.ID,
			SalaryID:   salaryID,
			EmployeeID: employeeID,
			Month:      period.Month,
			Year:       period.Year,
			AmountPaid: amount,
			Status:     advance.InstallmentStatusPending,
		})
	}
	return suggested, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetSalary(ctx context.Context, id string) (salary.SalaryRecordResponse, error) {
	if validator.IsEmpty(id) {
		return salary.SalaryRecordResponse{}, validator.ValidationErrors{{Field: "id", Message: "is required"}}
	}

	record, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	record.Installments, err = s.installmentRepo.ListBySalary(ctx, id)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	return mapToSalaryResponse(record), nil
}

func (s *PayrollServiceImpl) ListSalaries(ctx context.Context, filter salary.SalaryFilter) (salary.ListSalaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return salary.ListSalaryResponse{}, err
	}

	records, totalCount, err := s.salaryRepo.List(ctx, filter)
	if err != nil {
		return salary.ListSalaryResponse{}, err
	}

	return salary.ListSalaryResponse{
		Data:       mapToSalaryResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) DeleteSalary(ctx context.Context, req salary.DeleteSalaryRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	release, err := s.locker.Acquire(ctx, lock.SalaryKey(req.EmployeeID, req.Month, req.Year))
	if err != nil {
		return err
	}
	defer release()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.salaryRepo.GetByEmployeePeriod(ctx, req.EmployeeID, req.Month, req.Year)
		if err != nil {
			return err
		}
		if !record.Status.IsDeletable() {
			return salary.ErrSalaryNotDeletable
		}

		if err := s.installmentRepo.DeleteBySalary(ctx, record.ID); err != nil {
			return fmt.Errorf("failed to delete installments: %w", err)
		}
		if err := s.salaryRepo.Delete(ctx, record.ID); err != nil {
			return err
		}

		s.logger.Info("salary record deleted", "salary_id", record.ID, "employee_id", record.EmployeeID)
		return nil
	})
}

func (s *PayrollServiceImpl) TransitionSalary(ctx context.Context, req salary.TransitionSalaryRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	target := salary.SalaryStatus(req.Status)

	release, err := s.lockSalary(ctx, req.SalaryID)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	defer release()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.salaryRepo.GetByIDForUpdate(ctx, req.SalaryID)
		if err != nil {
			return err
		}
		next, err := record.Status.Transition(target)
		if err != nil {
			return err
		}

		// Suggestions that were never decided lapse once the record leaves PENDING.
		if record.Status.IsEditable() {
			if err := s.installmentRepo.DeleteBySalary(ctx, record.ID, advance.InstallmentStatusPending); err != nil {
				return fmt.Errorf("failed to drop pending installments: %w", err)
			}
		}

		now := s.now()
		processedAt, paidAt := record.ProcessedAt, record.PaidAt
		switch next {
		case salary.SalaryStatusProcessing:
			processedAt = &now
		case salary.SalaryStatusPaid:
			paidAt = &now
			if err := s.installmentRepo.UpdateStatusBySalary(ctx, record.ID, advance.InstallmentStatusApproved, advance.InstallmentStatusPaid); err != nil {
				return fmt.Errorf("failed to mark installments paid: %w", err)
			}
		}

		if err := s.salaryRepo.UpdateStatus(ctx, record.ID, next, processedAt, paidAt); err != nil {
			return err
		}

		s.logger.Info("salary status changed", "salary_id", record.ID, "from", record.Status, "to", next)
		return nil
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	return s.GetSalary(ctx, req.SalaryID)
}

func (s *PayrollServiceImpl) RecalculateSalary(ctx context.Context, id string) (salary.SalaryRecordResponse, error) {
	if validator.IsEmpty(id) {
		return salary.SalaryRecordResponse{}, validator.ValidationErrors{{Field: "id", Message: "is required"}}
	}

	release, err := s.lockSalary(ctx, id)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	defer release()

	var result salary.SalaryRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.salaryRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := record.Status.RequireEditable(); err != nil {
			return err
		}
		result, err = s.recalculate(ctx, record)
		return err
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	return mapToSalaryResponse(result), nil
}

// recalculate rederives the advance deduction and net salary from the
// record's current installments. Attendance-derived amounts are kept as stored.
func (s *PayrollServiceImpl) recalculate(ctx context.Context, record salary.SalaryRecord) (salary.SalaryRecord, error) {
	installments, err := s.installmentRepo.ListBySalary(ctx, record.ID)
	if err != nil {
		return salary.SalaryRecord{}, err
	}

	updated := record.WithAdvanceDeduction(advance.SumApplied(installments))
	if err := s.salaryRepo.UpdateAdvanceTotals(ctx, record.ID, updated.AdvanceDeduction, updated.NetSalary); err != nil {
		return salary.SalaryRecord{}, fmt.Errorf("failed to update salary totals: %w", err)
	}
	updated.Installments = installments
	return updated, nil
}

// lockSalary takes the generation lock of the record's period so record
// edits never interleave with a regeneration of the same month.
func (s *PayrollServiceImpl) lockSalary(ctx context.Context, salaryID string) (func(), error) {
	record, err := s.salaryRepo.GetByID(ctx, salaryID)
	if err != nil {
		return nil, err
	}
	return s.locker.Acquire(ctx, lock.SalaryKey(record.EmployeeID, record.Month, record.Year))
}

// ========== INSTALLMENTS ==========

func (s *PayrollServiceImpl) DecideInstallment(ctx context.Context, req salary.DecideInstallmentRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	action := advance.InstallmentAction(req.Action)

	inst, err := s.installmentRepo.GetByID(ctx, req.InstallmentID)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	if inst.SalaryID != req.SalaryID {
		return salary.SalaryRecordResponse{}, salary.ErrInstallmentNotOnSalary
	}

	releaseSalary, err := s.locker.Acquire(ctx, lock.SalaryKey(inst.EmployeeID, inst.Month, inst.Year))
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	defer releaseSalary()
	releaseAdvance, err := s.locker.Acquire(ctx, lock.AdvanceKey(inst.AdvanceID))
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	defer releaseAdvance()

	var result salary.SalaryRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.salaryRepo.GetByIDForUpdate(ctx, req.SalaryID)
		if err != nil {
			return err
		}
		if err := record.Status.RequireEditable(); err != nil {
			return err
		}

		inst, err := s.installmentRepo.GetByIDForUpdate(ctx, req.InstallmentID)
		if err != nil {
			return err
		}
		if inst.SalaryID != record.ID {
			return salary.ErrInstallmentNotOnSalary
		}

		next, err := inst.Status.Decide(action)
		if err != nil {
			return err
		}

		switch next {
		case advance.InstallmentStatusApproved:
			if err := s.applyInstallment(ctx, inst, req.DecidedBy); err != nil {
				return err
			}
		case advance.InstallmentStatusRejected:
			// Rejected rows are deleted, so a repeated reject reports not found.
			if err := s.installmentRepo.Delete(ctx, inst.ID); err != nil {
				return err
			}
			s.logger.Info("installment rejected",
				"installment_id", inst.ID,
				"advance_id", inst.AdvanceID,
				"salary_id", record.ID,
			)
		}

		result, err = s.recalculate(ctx, record)
		return err
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	return mapToSalaryResponse(result), nil
}

// applyInstallment decrements the parent advance and marks the installment
// APPROVED. Both writes share the caller's transaction.
func (s *PayrollServiceImpl) applyInstallment(ctx context.Context, inst advance.Installment, decidedBy string) error {
	adv, err := s.advanceRepo.GetByIDForUpdate(ctx, inst.AdvanceID)
	if err != nil {
		return err
	}
	repaid, err := adv.Repay(inst.AmountPaid)
	if err != nil {
		return err
	}
	if err := s.advanceRepo.UpdateBalance(ctx, adv.ID, repaid.RemainingAmount, repaid.IsSettled); err != nil {
		return fmt.Errorf("failed to update advance balance: %w", err)
	}

	var approvedBy *string
	if !validator.IsEmpty(decidedBy) {
		approvedBy = &decidedBy
	}
	if err := s.installmentRepo.MarkApproved(ctx, inst.ID, approvedBy, s.now()); err != nil {
		return err
	}

	s.logger.Info("installment approved",
		"installment_id", inst.ID,
		"advance_id", adv.ID,
		"amount", inst.AmountPaid.String(),
		"remaining", repaid.RemainingAmount.String(),
		"settled", repaid.IsSettled,
	)
	return nil
}

// ========== ADVANCES ==========

func (s *PayrollServiceImpl) ListAdvances(ctx context.Context, employeeID string) ([]advance.AdvanceResponse, error) {
	if validator.IsEmpty(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "is required"}}
	}

	advances, err := s.advanceRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]advance.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		result = append(result, mapToAdvanceResponse(a))
	}
	return result, nil
}
