// Package queue moves analysis jobs through Redis via asynq. Delivery is
// at-least-once; the dispatcher's transitions absorb duplicates. When Redis
// is unavailable the inline runner keeps job submission working at the cost
// of durability.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/sagarpatil/nutriscope/internal/dispatch"
)

const (
	taskTypeAnalysis = "analysis:job"
	queueName        = "analysis"

	// maxRetry bounds redelivery of runs that could not record a terminal
	// state. Analysis failures themselves are recorded, not retried.
	maxRetry = 3
)

// Enqueuer hands a job message to whatever executes it. Implemented by Queue
// (Redis) and InlineRunner (same-process goroutine).
type Enqueuer interface {
	Enqueue(ctx context.Context, msg dispatch.Message) error
}

// Queue is the Redis-backed implementation: a producer client plus an asynq
// worker server dispatching to dispatch.Process.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// New connects a Queue to the Redis instance at redisURL. concurrency is the
// number of worker goroutines.
func New(redisURL string, concurrency int, d *dispatch.Dispatcher, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	q := &Queue{
		client: asynq.NewClient(opt),
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{queueName: 1},
		}),
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
	q.mux.HandleFunc(taskTypeAnalysis, func(ctx context.Context, task *asynq.Task) error {
		var msg dispatch.Message
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			// A payload this process cannot read will not become readable
			// on retry.
			return fmt.Errorf("decode task payload: %v: %w", err, asynq.SkipRetry)
		}
		return d.Process(ctx, msg)
	})
	return q, nil
}

// Enqueue submits one job message to Redis.
func (q *Queue) Enqueue(ctx context.Context, msg dispatch.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}
	task := asynq.NewTask(taskTypeAnalysis, body, asynq.Queue(queueName), asynq.MaxRetry(maxRetry))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue job %s: %w", msg.JobID, err)
	}
	return nil
}

// Start runs the worker server in the background.
func (q *Queue) Start() {
	go func() {
		if err := q.server.Run(q.mux); err != nil && err != asynq.ErrServerClosed {
			q.logger.Error("worker server stopped", "error", err)
		}
	}()
}

// Shutdown stops the worker server and closes the producer client. In-flight
// jobs get to finish before the server returns.
func (q *Queue) Shutdown() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		q.logger.Warn("close queue client", "error", err)
	}
}

var _ Enqueuer = (*Queue)(nil)
