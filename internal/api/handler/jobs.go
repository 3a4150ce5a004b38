package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/api/response"
	"github.com/sagarpatil/nutriscope/internal/cache"
	"github.com/sagarpatil/nutriscope/internal/dispatch"
	"github.com/sagarpatil/nutriscope/internal/queue"
	"github.com/sagarpatil/nutriscope/internal/store"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

const (
	// pollSnapshotTTL absorbs hot polling of in-flight jobs without another
	// store read. Short on purpose: a stale snapshot only delays the client
	// by one poll cycle.
	pollSnapshotTTL = 2 * time.Second

	// terminalJobTTL caches finished job documents, which are immutable.
	terminalJobTTL = 10 * time.Minute
)

// JobStore is the slice of the store the job handlers depend on.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, int, error)
}

type createJobRequest struct {
	Kind    models.JobKind  `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type createJobResponse struct {
	JobID  uuid.UUID      `json:"job_id"`
	Kind   models.JobKind `json:"job_kind"`
	Status string         `json:"status"`
}

// NewCreateJobHandler returns the handler for POST /api/v1/jobs. The job is
// validated, persisted as queued, and enqueued; the response is 202 with the
// job_id to poll.
func NewCreateJobHandler(st JobStore, enq queue.Enqueuer, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if !models.ValidJobKind(req.Kind) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("unknown job kind %q", req.Kind), nil)
			return
		}

		payload, err := normalizeJobPayload(req.Kind, req.Payload)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		job := &models.Job{
			ID:      uuid.New(),
			Kind:    req.Kind,
			Status:  models.JobStatusQueued,
			Payload: payload,
		}
		if err := st.CreateJob(r.Context(), job); err != nil {
			logger.Error("create job", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not create job", nil)
			return
		}

		if err := enq.Enqueue(r.Context(), dispatch.Message{
			JobID:   job.ID,
			Kind:    job.Kind,
			Payload: job.Payload,
		}); err != nil {
			// Delivery is best effort. The record stays queued and the stall
			// is observable by polling; the creation itself succeeded.
			logger.Warn("enqueue job failed, job remains queued", "job_id", job.ID, "error", err)
		}

		response.Accepted(w, createJobResponse{
			JobID:  job.ID,
			Kind:   job.Kind,
			Status: job.Status,
		})
	}
}

// normalizeJobPayload validates the payload for its kind and returns the
// normalized form that gets persisted and enqueued.
func normalizeJobPayload(kind models.JobKind, raw json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case models.JobKindFoodAnalysis:
		var p models.FoodAnalysisPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid payload: %v", err)
		}
		if err := validateFoods(p.Foods); err != nil {
			return nil, err
		}
		return json.Marshal(p)

	case models.JobKindNeutralization:
		var p models.NeutralizationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid payload: %v", err)
		}
		if err := validateFoods(p.Foods); err != nil {
			return nil, err
		}
		return json.Marshal(p)

	case models.JobKindRecommendedIntake, models.JobKindWeeklyIntake:
		var p models.IntakePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid payload: %v", err)
		}
		if err := validateIntake(p); err != nil {
			return nil, err
		}
		return json.Marshal(p)
	}
	return nil, fmt.Errorf("unknown job kind %q", kind)
}

// NewGetJobHandler returns the handler for GET /api/v1/jobs/{jobID}. Polling
// of in-flight jobs is served from a short-lived document snapshot when
// possible; terminal jobs are cached whole since they never change. Both
// cache paths return the same document shape as a store read.
func NewGetJobHandler(st JobStore, c cache.Cache, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id must be a UUID", nil)
			return
		}

		if raw, ok, err := c.Get(r.Context(), cache.JobResultKey(id)); err == nil && ok {
			var job models.Job
			if err := json.Unmarshal(raw, &job); err == nil {
				response.JSON(w, &job)
				return
			}
		}
		if raw, ok, err := c.GetJobSnapshot(r.Context(), id); err == nil && ok {
			var job models.Job
			if err := json.Unmarshal(raw, &job); err == nil {
				response.JSON(w, &job)
				return
			}
		}

		job, err := st.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			logger.Error("get job", "job_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not load job", nil)
			return
		}

		if job.Terminal() {
			if raw, err := json.Marshal(job); err == nil {
				if err := c.Set(r.Context(), cache.JobResultKey(id), raw, terminalJobTTL); err != nil {
					logger.Warn("cache job document", "job_id", id, "error", err)
				}
			}
		} else if raw, err := json.Marshal(job); err == nil {
			if err := c.SetJobSnapshot(r.Context(), id, raw, pollSnapshotTTL); err != nil {
				logger.Warn("cache job snapshot", "job_id", id, "error", err)
			}
		}

		response.JSON(w, job)
	}
}

// NewListJobsHandler returns the handler for GET /api/v1/jobs. Supports
// status, page, and limit query parameters.
func NewListJobsHandler(st JobStore, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.JobFilter{
			Status: r.URL.Query().Get("status"),
			Page:   queryInt(r, "page"),
			Limit:  queryInt(r, "limit"),
		}
		switch filter.Status {
		case "", models.JobStatusQueued, models.JobStatusProcessing,
			models.JobStatusCompleted, models.JobStatusFailed:
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				fmt.Sprintf("unknown status %q", filter.Status), nil)
			return
		}
		filter = filter.Normalize()

		jobs, total, err := st.ListJobs(r.Context(), filter)
		if err != nil {
			logger.Error("list jobs", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not list jobs", nil)
			return
		}

		response.Collection(w, jobs, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0
	}
	return n
}
