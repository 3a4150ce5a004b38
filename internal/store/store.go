package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

var (
	ErrNotFound = errors.New("resource not found")

	// ErrStaleTransition marks a state change that arrived after the job
	// already left the required state. Under at-least-once delivery this is
	// expected; callers log a warning and move on, they do not crash.
	ErrStaleTransition = errors.New("job already past requested transition")
)

// Store is the data access interface for job records. All persistence goes
// through here; the dispatcher never mutates a record it holds directly.
//
// Transition semantics: BeginProcessing moves queued -> processing and is a
// no-op when the job is already processing. CompleteJob and FailJob move
// processing -> terminal; the first terminal write wins and later attempts
// return ErrStaleTransition.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error)

	BeginProcessing(ctx context.Context, id uuid.UUID) error
	CompleteJob(ctx context.Context, id uuid.UUID, result json.RawMessage) error
	FailJob(ctx context.Context, id uuid.UUID, errMsg string) error
}

// JobFilter narrows and paginates ListJobs.
type JobFilter struct {
	Status string
	Page   int
	Limit  int
}

// Normalize clamps pagination to sane bounds.
func (f JobFilter) Normalize() JobFilter {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}
