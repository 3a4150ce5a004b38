package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// FailoverStore decorates a primary Store with an in-process fallback. Every
// write tries the primary first; on an infrastructure error the same write is
// applied to the fallback and a warning is logged. The primary is not
// retried: the fallback stays authoritative for that record until the
// process restarts. Reads check the primary first and consult the fallback
// when the primary errors or does not have the record.
//
// Semantic results (ErrNotFound on transitions, ErrStaleTransition) are not
// failover triggers on their own; a record absent from the primary is looked
// up in the fallback before giving up.
type FailoverStore struct {
	primary  Store // nil when the primary was unreachable at construction
	fallback *MemoryStore
	logger   *slog.Logger
}

// NewFailoverStore composes primary and fallback. Pass a nil primary to run
// entirely on the in-process store.
func NewFailoverStore(primary Store, fallback *MemoryStore, logger *slog.Logger) *FailoverStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverStore{primary: primary, fallback: fallback, logger: logger}
}

// FallbackOnly reports whether no durable primary is configured.
func (s *FailoverStore) FallbackOnly() bool {
	return s.primary == nil
}

func (s *FailoverStore) Ping(ctx context.Context) error {
	if s.primary == nil {
		return s.fallback.Ping(ctx)
	}
	return s.primary.Ping(ctx)
}

func (s *FailoverStore) CreateJob(ctx context.Context, job *models.Job) error {
	if s.primary != nil {
		err := s.primary.CreateJob(ctx, job)
		if err == nil {
			return nil
		}
		s.logger.Warn("primary store write failed, using in-process fallback",
			"op", "create", "job_id", job.ID, "error", err)
	}
	return s.fallback.CreateJob(ctx, job)
}

func (s *FailoverStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	if s.primary != nil {
		j, err := s.primary.GetJob(ctx, id)
		if err == nil {
			return j, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("primary store read failed, using in-process fallback",
				"op", "get", "job_id", id, "error", err)
		}
	}
	return s.fallback.GetJob(ctx, id)
}

func (s *FailoverStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error) {
	filter = filter.Normalize()

	if s.primary == nil {
		return s.fallback.ListJobs(ctx, filter)
	}

	primaryJobs, primaryTotal, err := s.primary.ListJobs(ctx, filter)
	if err != nil {
		s.logger.Warn("primary store list failed, using in-process fallback", "error", err)
		return s.fallback.ListJobs(ctx, filter)
	}
	if s.fallback.Len() == 0 {
		return primaryJobs, primaryTotal, nil
	}

	// Records that failed over live only in memory; merge them in so they
	// stay observable.
	fallbackJobs, fallbackTotal, err := s.fallback.ListJobs(ctx, JobFilter{Status: filter.Status, Limit: 100})
	if err != nil {
		return primaryJobs, primaryTotal, nil
	}

	seen := make(map[uuid.UUID]bool, len(primaryJobs))
	merged := make([]*models.Job, 0, len(primaryJobs)+len(fallbackJobs))
	for _, j := range primaryJobs {
		seen[j.ID] = true
		merged = append(merged, j)
	}
	for _, j := range fallbackJobs {
		if !seen[j.ID] {
			merged = append(merged, j)
		}
	}
	sort.Slice(merged, func(i, k int) bool {
		return merged[i].CreatedAt.After(merged[k].CreatedAt)
	})
	if len(merged) > filter.Limit {
		merged = merged[:filter.Limit]
	}
	return merged, primaryTotal + fallbackTotal, nil
}

func (s *FailoverStore) BeginProcessing(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, "begin_processing", func(st Store) error {
		return st.BeginProcessing(ctx, id)
	})
}

func (s *FailoverStore) CompleteJob(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return s.transition(ctx, id, "complete", func(st Store) error {
		return st.CompleteJob(ctx, id, result)
	})
}

func (s *FailoverStore) FailJob(ctx context.Context, id uuid.UUID, errMsg string) error {
	return s.transition(ctx, id, "fail", func(st Store) error {
		return st.FailJob(ctx, id, errMsg)
	})
}

func (s *FailoverStore) transition(ctx context.Context, id uuid.UUID, op string, apply func(Store) error) error {
	if s.primary != nil {
		err := apply(s.primary)
		if err == nil || errors.Is(err, ErrStaleTransition) {
			return err
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("primary store write failed, using in-process fallback",
				"op", op, "job_id", id, "error", err)
		}
	}
	return apply(s.fallback)
}

var _ Store = (*FailoverStore)(nil)
