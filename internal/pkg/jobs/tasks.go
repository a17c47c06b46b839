package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue payroll tasks are enqueued on.
	QueueDefault = "default"
	// TaskGenerateMonthlySalaries generates salary records for every active employee of a month.
	TaskGenerateMonthlySalaries = "payroll:generate_monthly"
)

// GenerateMonthlyPayload names the month a generation task covers.
type GenerateMonthlyPayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// GenerateMonthlyTaskID is the asynq task id for a month. Enqueueing the same
// month twice while the first task is still queued is rejected by asynq.
func GenerateMonthlyTaskID(month, year int) string {
	return fmt.Sprintf("%s:%04d-%02d", TaskGenerateMonthlySalaries, year, month)
}

// NewGenerateMonthlyTask constructs an Asynq task for one month.
func NewGenerateMonthlyTask(month, year int) (*asynq.Task, error) {
	body, err := json.Marshal(GenerateMonthlyPayload{Month: month, Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskGenerateMonthlySalaries,
		body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(GenerateMonthlyTaskID(month, year)),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	), nil
}

// GenerateMonthlyJob runs monthly generation for tasks picked up by the worker.
type GenerateMonthlyJob struct {
	Service salary.SalaryService
	Logger  *slog.Logger
}

// NewGenerateMonthlyJob constructs the job handler.
func NewGenerateMonthlyJob(service salary.SalaryService, logger *slog.Logger) *GenerateMonthlyJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateMonthlyJob{Service: service, Logger: logger}
}

// Handle executes a TaskGenerateMonthlySalaries task. Malformed payloads and
// invalid months are not retried.
func (j *GenerateMonthlyJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("generate monthly job: not configured")
	}

	var payload GenerateMonthlyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := j.Service.GenerateMonthlySalaries(ctx, salary.GenerateMonthlyRequest{
		Month: payload.Month,
		Year:  payload.Year,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return fmt.Errorf("generate %04d-%02d: %v: %w", payload.Year, payload.Month, err, asynq.SkipRetry)
		}
		j.Logger.Error("monthly generation failed",
			slog.Int("month", payload.Month),
			slog.Int("year", payload.Year),
			slog.Any("error", err),
		)
		return err
	}

	j.Logger.Info("monthly generation task completed",
		slog.Int("month", result.Month),
		slog.Int("year", result.Year),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}
