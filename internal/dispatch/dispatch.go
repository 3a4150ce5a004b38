// Package dispatch executes queued analysis jobs. It owns the job state
// machine transitions around each run: queued -> processing on pickup, then
// exactly one of completed or failed. Delivery is at-least-once, so every
// transition tolerates duplicates and late arrivals.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/analyzer"
	"github.com/sagarpatil/nutriscope/internal/store"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// Message is the unit of work handed to the dispatcher. It carries the
// payload inline so a run never depends on reading it back from the store.
type Message struct {
	JobID   uuid.UUID       `json:"job_id"`
	Kind    models.JobKind  `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher runs analysis jobs to a terminal state.
type Dispatcher struct {
	store    store.Store
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
}

func New(st store.Store, an *analyzer.Analyzer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: st, analyzer: an, logger: logger}
}

// Process runs one job. Analysis errors (provider down, completion timeout)
// fail the job and return nil: the failure is recorded, redelivery would not
// help. A non-nil return means the run could not be recorded and the message
// should be redelivered.
func (d *Dispatcher) Process(ctx context.Context, msg Message) error {
	logger := d.logger.With("job_id", msg.JobID, "kind", msg.Kind)

	if err := d.store.BeginProcessing(ctx, msg.JobID); err != nil {
		switch {
		case errors.Is(err, store.ErrStaleTransition):
			// Duplicate delivery of an already-finished job.
			logger.Warn("skipping job already in terminal state")
			return nil
		case errors.Is(err, store.ErrNotFound):
			// The record is gone, most likely lost with an in-memory
			// fallback store. Nothing left to update.
			logger.Warn("job record not found, dropping message")
			return nil
		default:
			return fmt.Errorf("begin processing: %w", err)
		}
	}

	result, runErr := d.run(ctx, msg)
	if runErr != nil {
		logger.Warn("job failed", "error", runErr)
		return d.finish(logger, func() error {
			return d.store.FailJob(ctx, msg.JobID, runErr.Error())
		})
	}

	logger.Info("job completed")
	return d.finish(logger, func() error {
		return d.store.CompleteJob(ctx, msg.JobID, result)
	})
}

func (d *Dispatcher) run(ctx context.Context, msg Message) (json.RawMessage, error) {
	switch msg.Kind {
	case models.JobKindFoodAnalysis:
		var p models.FoodAnalysisPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		records, _, err := d.analyzer.AnalyzeFoods(ctx, p.Foods)
		if err != nil {
			return nil, err
		}
		return json.Marshal(records)

	case models.JobKindRecommendedIntake:
		var p models.IntakePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		rec, _, err := d.analyzer.RecommendedIntake(ctx, p)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rec)

	case models.JobKindWeeklyIntake:
		var p models.IntakePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		rec, _, err := d.analyzer.WeeklyIntake(ctx, p)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rec)

	case models.JobKindNeutralization:
		var p models.NeutralizationPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		rec, _, err := d.analyzer.Neutralization(ctx, p.Foods)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rec)
	}

	// A kind this binary does not know. Failing the job beats an endless
	// redelivery loop across a version mismatch.
	return nil, fmt.Errorf("unknown job kind %q", msg.Kind)
}

// finish records a terminal transition, tolerating a concurrent duplicate
// having won the race.
func (d *Dispatcher) finish(logger *slog.Logger, write func() error) error {
	if err := write(); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			logger.Warn("terminal state already recorded by another run")
			return nil
		}
		return fmt.Errorf("record terminal state: %w", err)
	}
	return nil
}
