package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
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

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var locker lock.Locker = lock.NewLocal()
	var enqueuer jobs.Enqueuer
	if cfg.Redis.Addr != "" {
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
		locker = lock.NewRedis(redisClient, cfg.Payroll.LockTTL)

		jobClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer jobClient.Close()
		enqueuer = jobClient
	} else {
		logger.Warn("REDIS_ADDR not set: using in-process locks, background generation disabled")
	}

	salaryService := payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		postgresql.NewSalaryRepository(db),
		postgresql.NewInstallmentRepository(db),
		postgresql.NewAdvanceRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewAttendanceRepository(db),
		postgresql.NewLeaveRequestRepository(db),
		locker,
		payrollService.WithConcurrency(cfg.Payroll.GenerationConcurrency),
		payrollService.WithLogger(logger),
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollHandler := appHTTP.NewPayrollHandler(salaryService, enqueuer)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:           cfg.App.Name,
		Version:           cfg.App.Version,
		Env:               cfg.App.Env,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		GenerateRateLimit: cfg.Payroll.GenerateRateLimit,
	}, JWTService, payrollHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
