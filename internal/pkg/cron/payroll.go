package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
)

// PayrollJobs enqueues monthly salary generation for the month that just
// closed. It is the only place the wall clock decides which period to generate.
type PayrollJobs struct {
	enqueuer jobs.Enqueuer
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu           sync.Mutex
	lastEnqueued string
}

func NewPayrollJobs(enqueuer jobs.Enqueuer, interval time.Duration, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &PayrollJobs{
		enqueuer: enqueuer,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("enqueue_monthly_salary_generation", j.interval, j.EnqueuePreviousMonth)
}

// EnqueuePreviousMonth enqueues generation for the previous month when run on
// the first day of a month (UTC). Later runs on the same day are no-ops.
func (j *PayrollJobs) EnqueuePreviousMonth(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != 1 {
		return nil
	}

	current, err := payroll.NewPeriod(int(now.Month()), now.Year())
	if err != nil {
		return err
	}
	period := current.Previous()

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastEnqueued == period.String() {
		return nil
	}

	res, err := j.enqueuer.EnqueueMonthlyGeneration(ctx, period.Month, period.Year)
	if err != nil {
		return fmt.Errorf("enqueue generation for %s: %w", period, err)
	}
	j.lastEnqueued = period.String()

	j.logger.Info("monthly salary generation enqueued",
		slog.String("period", period.String()),
		slog.String("task_id", res.TaskID),
		slog.Bool("already_queued", res.AlreadyQueued),
	)
	return nil
}
