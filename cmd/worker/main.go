package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		fmt.Println("REDIS_ADDR is required to run the worker")
		os.Exit(1)
	}

	logger := config.NewLogger(cfg).With(slog.String("component", "worker"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping", slog.Any("error", err))
		os.Exit(1)
	}

	salaryService := payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		postgresql.NewSalaryRepository(db),
		postgresql.NewInstallmentRepository(db),
		postgresql.NewAdvanceRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewAttendanceRepository(db),
		postgresql.NewLeaveRequestRepository(db),
		lock.NewRedis(redisClient, cfg.Payroll.LockTTL),
		payrollService.WithConcurrency(cfg.Payroll.GenerationConcurrency),
		payrollService.WithLogger(logger),
	)

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	if cfg.Payroll.ScheduleEnabled {
		jobClient := jobs.NewClient(redisOpts)
		defer jobClient.Close()

		scheduler := cron.NewScheduler(logger)
		cron.NewPayrollJobs(jobClient, cfg.Payroll.ScheduleInterval, logger).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	generateJob := jobs.NewGenerateMonthlyJob(salaryService, logger)
	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.Payroll.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskGenerateMonthlySalaries, Handler: generateJob.Handle},
		},
	})

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
