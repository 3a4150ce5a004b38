package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/sagarpatil/nutriscope/internal/dispatch"
)

// inlineTimeout bounds a single inline run. Generous next to the per-call
// completion timeout so multi-step jobs still fit.
const inlineTimeout = 5 * time.Minute

// InlineRunner executes jobs in-process instead of through Redis. Used when
// no Redis is configured, and as the fallback when an enqueue fails.
// Accepted work does not survive a restart.
type InlineRunner struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

func NewInlineRunner(d *dispatch.Dispatcher, logger *slog.Logger) *InlineRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineRunner{dispatcher: d, logger: logger}
}

// Enqueue starts the job on a goroutine and returns immediately, preserving
// the async contract the API promises. The run is detached from the request
// context so a closed connection does not abort the analysis.
func (r *InlineRunner) Enqueue(_ context.Context, msg dispatch.Message) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), inlineTimeout)
		defer cancel()
		if err := r.dispatcher.Process(ctx, msg); err != nil {
			r.logger.Error("inline job run failed", "job_id", msg.JobID, "error", err)
		}
	}()
	return nil
}

// FailoverEnqueuer tries the primary enqueuer and falls back to the inline
// runner when the primary is absent or errors. Same availability-first policy
// as the store failover.
type FailoverEnqueuer struct {
	primary Enqueuer
	inline  *InlineRunner
	logger  *slog.Logger
}

// NewFailoverEnqueuer builds the decorator. primary may be nil, which means
// every job runs inline.
func NewFailoverEnqueuer(primary Enqueuer, inline *InlineRunner, logger *slog.Logger) *FailoverEnqueuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverEnqueuer{primary: primary, inline: inline, logger: logger}
}

func (f *FailoverEnqueuer) Enqueue(ctx context.Context, msg dispatch.Message) error {
	if f.primary == nil {
		return f.inline.Enqueue(ctx, msg)
	}
	if err := f.primary.Enqueue(ctx, msg); err != nil {
		f.logger.Warn("enqueue failed, running job inline", "job_id", msg.JobID, "error", err)
		return f.inline.Enqueue(ctx, msg)
	}
	return nil
}

var (
	_ Enqueuer = (*InlineRunner)(nil)
	_ Enqueuer = (*FailoverEnqueuer)(nil)
)
