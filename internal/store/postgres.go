package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5. It is the
// primary, durable backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_jobs (job_id, kind, status, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Kind, job.Status, job.Payload, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT job_id, kind, status, payload, result, error_message, created_at, updated_at
		 FROM analysis_jobs WHERE job_id = $1`, id,
	).Scan(&j.ID, &j.Kind, &j.Status, &j.Payload, &j.Result, &j.ErrorMessage,
		&j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error) {
	filter = filter.Normalize()

	where := "TRUE"
	args := []any{}
	if filter.Status != "" {
		where = "status = $1"
		args = append(args, filter.Status)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM analysis_jobs WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	dataQuery := fmt.Sprintf(
		`SELECT job_id, kind, status, payload, result, error_message, created_at, updated_at
		 FROM analysis_jobs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Kind, &j.Status, &j.Payload, &j.Result,
			&j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, total, rows.Err()
}

// BeginProcessing moves a queued job to processing. The update is
// conditional on the current status, so two concurrent deliveries of the
// same message cannot both transition; the loser sees a no-op.
func (s *PostgresStore) BeginProcessing(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs SET status = $2, updated_at = $3
		 WHERE job_id = $1 AND status = $4`,
		id, models.JobStatusProcessing, time.Now().UTC(), models.JobStatusQueued)
	if err != nil {
		return fmt.Errorf("begin processing: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.resolveStaleTransition(ctx, id, models.JobStatusProcessing)
}

func (s *PostgresStore) CompleteJob(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs SET status = $2, result = $3, updated_at = $4
		 WHERE job_id = $1 AND status = $5`,
		id, models.JobStatusCompleted, result, time.Now().UTC(), models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.resolveStaleTransition(ctx, id, models.JobStatusCompleted)
}

func (s *PostgresStore) FailJob(ctx context.Context, id uuid.UUID, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs SET status = $2, error_message = $3, updated_at = $4
		 WHERE job_id = $1 AND status = $5`,
		id, models.JobStatusFailed, errMsg, time.Now().UTC(), models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.resolveStaleTransition(ctx, id, models.JobStatusFailed)
}

// resolveStaleTransition classifies a conditional update that matched no
// rows: the job is either missing, already where the caller wanted it (a
// duplicate delivery, not an error), or past it.
func (s *PostgresStore) resolveStaleTransition(ctx context.Context, id uuid.UUID, wanted string) error {
	var current string
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM analysis_jobs WHERE job_id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}
	if current == wanted && wanted == models.JobStatusProcessing {
		return nil
	}
	return ErrStaleTransition
}

var _ Store = (*PostgresStore)(nil)
