package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/store"
	"github.com/sagarpatil/nutriscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore wraps a MemoryStore and fails every call once told to.
type flakyStore struct {
	inner *store.MemoryStore
	down  bool
}

var errConnRefused = errors.New("connection refused")

func (f *flakyStore) Ping(ctx context.Context) error {
	if f.down {
		return errConnRefused
	}
	return f.inner.Ping(ctx)
}

func (f *flakyStore) CreateJob(ctx context.Context, job *models.Job) error {
	if f.down {
		return errConnRefused
	}
	return f.inner.CreateJob(ctx, job)
}

func (f *flakyStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	if f.down {
		return nil, errConnRefused
	}
	return f.inner.GetJob(ctx, id)
}

func (f *flakyStore) ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, int, error) {
	if f.down {
		return nil, 0, errConnRefused
	}
	return f.inner.ListJobs(ctx, filter)
}

func (f *flakyStore) BeginProcessing(ctx context.Context, id uuid.UUID) error {
	if f.down {
		return errConnRefused
	}
	return f.inner.BeginProcessing(ctx, id)
}

func (f *flakyStore) CompleteJob(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	if f.down {
		return errConnRefused
	}
	return f.inner.CompleteJob(ctx, id, result)
}

func (f *flakyStore) FailJob(ctx context.Context, id uuid.UUID, errMsg string) error {
	if f.down {
		return errConnRefused
	}
	return f.inner.FailJob(ctx, id, errMsg)
}

var _ store.Store = (*flakyStore)(nil)

func TestFailover_NilPrimaryRunsOnFallback(t *testing.T) {
	ctx := context.Background()
	s := store.NewFailoverStore(nil, store.NewMemoryStore(), nil)

	assert.True(t, s.FallbackOnly())

	job := newQueuedJob(t, s)
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestFailover_HealthyPrimaryIsUsed(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore()}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	job := newQueuedJob(t, s)

	assert.Equal(t, 1, primary.inner.Len())
	assert.Equal(t, 0, fallback.Len())

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestFailover_WriteFallsBackWhenPrimaryDown(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore(), down: true}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	job := newQueuedJob(t, s)

	assert.Equal(t, 0, primary.inner.Len())
	assert.Equal(t, 1, fallback.Len())

	// The record lives in memory; reads keep working while the primary is
	// down and after it comes back.
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	primary.down = false
	got, err = s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestFailover_LifecycleSurvivesMidFlightOutage(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore()}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	// Created while healthy, then the primary goes away before processing.
	job := newQueuedJob(t, s)
	primary.down = true

	// The fallback has no record yet; the transition lands there after the
	// primary errors, and the record is absent, so ErrNotFound surfaces.
	err := s.BeginProcessing(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// A job created during the outage runs its whole lifecycle in memory.
	job2 := newQueuedJob(t, s)
	require.NoError(t, s.BeginProcessing(ctx, job2.ID))
	require.NoError(t, s.CompleteJob(ctx, job2.ID, json.RawMessage(`{"ok":true}`)))

	got, err := s.GetJob(ctx, job2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestFailover_StaleTransitionPropagates(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore()}
	s := store.NewFailoverStore(primary, store.NewMemoryStore(), nil)

	job := newQueuedJob(t, s)
	require.NoError(t, s.BeginProcessing(ctx, job.ID))
	require.NoError(t, s.CompleteJob(ctx, job.ID, nil))

	// The primary answers ErrStaleTransition; the fallback must not be
	// consulted, the answer is semantic, not infrastructural.
	assert.ErrorIs(t, s.FailJob(ctx, job.ID, "late"), store.ErrStaleTransition)
}

func TestFailover_GetConsultsFallbackOnPrimaryMiss(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore()}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	// Seed the fallback directly, as if the record failed over earlier.
	job := newQueuedJob(t, fallback)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestFailover_ListMergesBothBackends(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore()}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	inPrimary := newQueuedJob(t, s)
	primary.down = true
	inFallback := newQueuedJob(t, s)
	primary.down = false

	jobs, total, err := s.ListJobs(ctx, store.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	ids := make(map[uuid.UUID]bool)
	for _, j := range jobs {
		ids[j.ID] = true
	}
	assert.True(t, ids[inPrimary.ID])
	assert.True(t, ids[inFallback.ID])
}

func TestFailover_ListFallsBackWhenPrimaryDown(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: store.NewMemoryStore(), down: true}
	fallback := store.NewMemoryStore()
	s := store.NewFailoverStore(primary, fallback, nil)

	job := newQueuedJob(t, s)

	jobs, total, err := s.ListJobs(ctx, store.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}
