package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Handlers    []TaskHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
		Logger: &slogAdapter{logger: cfg.Logger},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	w.logger.Info("worker started", slog.String("queue", QueueDefault))
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// EnqueueResult reports where a generation task landed.
type EnqueueResult struct {
	TaskID        string `json:"task_id"`
	Queue         string `json:"queue"`
	AlreadyQueued bool   `json:"already_queued"`
}

// Enqueuer submits monthly generation to the background worker.
type Enqueuer interface {
	EnqueueMonthlyGeneration(ctx context.Context, month, year int) (EnqueueResult, error)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueMonthlyGeneration enqueues a generation task for the month. A task
// for the same month that is still queued or running is reported as
// AlreadyQueued instead of an error.
func (c *Client) EnqueueMonthlyGeneration(ctx context.Context, month, year int) (EnqueueResult, error) {
	task, err := NewGenerateMonthlyTask(month, year)
	if err != nil {
		return EnqueueResult{}, err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	return enqueueResult(GenerateMonthlyTaskID(month, year), info, err)
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

func enqueueResult(taskID string, info *asynq.TaskInfo, err error) (EnqueueResult, error) {
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return EnqueueResult{TaskID: taskID, Queue: QueueDefault, AlreadyQueued: true}, nil
	}
	if err != nil {
		return EnqueueResult{}, err
	}
	return EnqueueResult{TaskID: info.ID, Queue: info.Queue}, nil
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(args ...interface{}) { a.logger.Debug("asynq", slog.Any("msg", args)) }
func (a *slogAdapter) Info(args ...interface{})  { a.logger.Info("asynq", slog.Any("msg", args)) }
func (a *slogAdapter) Warn(args ...interface{})  { a.logger.Warn("asynq", slog.Any("msg", args)) }
func (a *slogAdapter) Error(args ...interface{}) { a.logger.Error("asynq", slog.Any("msg", args)) }

func (a *slogAdapter) Fatal(args ...interface{}) {
	a.logger.Error("asynq fatal", slog.Any("msg", args))
	os.Exit(1)
}
