package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/api/handler"
	"github.com/sagarpatil/nutriscope/internal/store"
	"github.com/sagarpatil/nutriscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJob(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// getJob routes the request through chi so URL parameters resolve.
func getJob(h http.HandlerFunc, id string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/v1/jobs/{jobID}", h)
	req := httptest.NewRequest("GET", "/api/v1/jobs/"+id, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateJob_Accepted(t *testing.T) {
	st := store.NewMemoryStore()
	enq := &mockEnqueuer{}
	h := handler.NewCreateJobHandler(st, enq, nil)

	w := postJob(h, `{"kind":"food_analysis","payload":{"foods":[{"food_name":"oatmeal","meal_type":"breakfast"}]}}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	data := dataBody(t, w)
	assert.Equal(t, "queued", data["status"])
	assert.Equal(t, "food_analysis", data["job_kind"])

	jobID, err := uuid.Parse(data["job_id"].(string))
	require.NoError(t, err)

	// Persisted and enqueued with the same ID.
	job, err := st.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	require.Len(t, enq.messages, 1)
	assert.Equal(t, jobID, enq.messages[0].JobID)
}

func TestCreateJob_UnknownKind(t *testing.T) {
	h := handler.NewCreateJobHandler(store.NewMemoryStore(), &mockEnqueuer{}, nil)

	w := postJob(h, `{"kind":"make_coffee","payload":{}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errBody(t, w)["message"], "unknown job kind")
}

func TestCreateJob_InvalidPayload(t *testing.T) {
	h := handler.NewCreateJobHandler(store.NewMemoryStore(), &mockEnqueuer{}, nil)

	w := postJob(h, `{"kind":"recommended_intake","payload":{"age_group":"","weight_kg":70,"height_cm":175}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errBody(t, w)["message"], "age_group")
}

func TestCreateJob_IntakeKinds(t *testing.T) {
	for _, kind := range []string{"recommended_intake", "weekly_recommended_intake"} {
		st := store.NewMemoryStore()
		h := handler.NewCreateJobHandler(st, &mockEnqueuer{}, nil)

		w := postJob(h, `{"kind":"`+kind+`","payload":{"age_group":"adult","weight_kg":70,"height_cm":175}}`)

		assert.Equal(t, http.StatusAccepted, w.Code, "kind %s", kind)
	}
}

func TestCreateJob_EnqueueFailureLeavesJobQueued(t *testing.T) {
	st := store.NewMemoryStore()
	h := handler.NewCreateJobHandler(st, &mockEnqueuer{err: assert.AnError}, nil)

	w := postJob(h, `{"kind":"food_analysis","payload":{"foods":[{"food_name":"oatmeal","meal_type":"breakfast"}]}}`)

	// Best-effort delivery: creation succeeds and the record stays queued,
	// observable by polling.
	require.Equal(t, http.StatusAccepted, w.Code)
	data := dataBody(t, w)
	assert.Equal(t, "queued", data["status"])

	jobID, err := uuid.Parse(data["job_id"].(string))
	require.NoError(t, err)
	job, err := st.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)
}

func TestGetJob_InvalidID(t *testing.T) {
	h := handler.NewGetJobHandler(store.NewMemoryStore(), newMemCache(), nil)

	w := getJob(h, "not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob_NotFound(t *testing.T) {
	h := handler.NewGetJobHandler(store.NewMemoryStore(), newMemCache(), nil)

	w := getJob(h, uuid.NewString())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errBody(t, w)["code"])
}

func TestGetJob_ReturnsDocument(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	job := &models.Job{
		ID:      uuid.New(),
		Kind:    models.JobKindFoodAnalysis,
		Status:  models.JobStatusQueued,
		Payload: json.RawMessage(`{"foods":[]}`),
	}
	require.NoError(t, st.CreateJob(ctx, job))

	h := handler.NewGetJobHandler(st, newMemCache(), nil)
	w := getJob(h, job.ID.String())

	require.Equal(t, http.StatusOK, w.Code)
	data := dataBody(t, w)
	assert.Equal(t, job.ID.String(), data["job_id"])
	assert.Equal(t, "queued", data["status"])
}

func TestGetJob_InFlightPollServedFromSnapshotCache(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	c := newMemCache()
	job := &models.Job{ID: uuid.New(), Kind: models.JobKindFoodAnalysis, Status: models.JobStatusQueued}
	require.NoError(t, st.CreateJob(ctx, job))

	h := handler.NewGetJobHandler(st, c, nil)

	// First read populates the snapshot cache, second is served from it even
	// after the record disappears from the store.
	first := getJob(h, job.ID.String())
	require.Equal(t, http.StatusOK, first.Code)

	second := getJob(handler.NewGetJobHandler(store.NewMemoryStore(), c, nil), job.ID.String())
	require.Equal(t, http.StatusOK, second.Code)
	data := dataBody(t, second)
	assert.Equal(t, "queued", data["status"])
	assert.Equal(t, job.ID.String(), data["job_id"])
}

func TestGetJob_CachedPollKeepsFullDocumentShape(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	c := newMemCache()
	job := &models.Job{ID: uuid.New(), Kind: models.JobKindFoodAnalysis, Status: models.JobStatusQueued}
	require.NoError(t, st.CreateJob(ctx, job))

	h := handler.NewGetJobHandler(st, c, nil)
	first := getJob(h, job.ID.String())
	require.Equal(t, http.StatusOK, first.Code)

	second := getJob(h, job.ID.String())
	require.Equal(t, http.StatusOK, second.Code)

	// The cached response carries the same fields as a store read; a client
	// parsing timestamps must not see them vanish between polls.
	for _, field := range []string{"job_id", "job_kind", "status", "created_at", "updated_at"} {
		assert.Contains(t, dataBody(t, first), field)
		assert.Contains(t, dataBody(t, second), field)
	}
	assert.Equal(t, dataBody(t, first)["created_at"], dataBody(t, second)["created_at"])
}

func TestGetJob_TerminalDocumentCachedWhole(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	c := newMemCache()
	job := &models.Job{ID: uuid.New(), Kind: models.JobKindFoodAnalysis, Status: models.JobStatusQueued}
	require.NoError(t, st.CreateJob(ctx, job))
	require.NoError(t, st.BeginProcessing(ctx, job.ID))
	require.NoError(t, st.CompleteJob(ctx, job.ID, json.RawMessage(`{"ok":true}`)))

	h := handler.NewGetJobHandler(st, c, nil)
	first := getJob(h, job.ID.String())
	require.Equal(t, http.StatusOK, first.Code)

	// Served from cache even against an empty store.
	second := getJob(handler.NewGetJobHandler(store.NewMemoryStore(), c, nil), job.ID.String())
	require.Equal(t, http.StatusOK, second.Code)
	data := dataBody(t, second)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, true, data["result"].(map[string]any)["ok"])
}

func TestListJobs_FilterAndMeta(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, st.CreateJob(ctx, &models.Job{
			ID: uuid.New(), Kind: models.JobKindFoodAnalysis, Status: models.JobStatusQueued,
		}))
	}

	h := handler.NewListJobsHandler(st, nil)
	req := httptest.NewRequest("GET", "/api/v1/jobs?status=queued&page=1&limit=2", nil)
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["data"].([]any), 2)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(3), meta["total"])
	assert.Equal(t, true, meta["has_next"])
}

func TestListJobs_UnknownStatus(t *testing.T) {
	h := handler.NewListJobsHandler(store.NewMemoryStore(), nil)
	req := httptest.NewRequest("GET", "/api/v1/jobs?status=sleeping", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
