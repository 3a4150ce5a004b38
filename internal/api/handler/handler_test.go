package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/dispatch"
	"github.com/sagarpatil/nutriscope/pkg/models"
	"github.com/stretchr/testify/require"
)

// --- Mock analyzer ---

type mockAnalyzer struct {
	records      []models.NutrientAnalysis
	usedFallback bool
	err          error
	calls        int
}

func (m *mockAnalyzer) AnalyzeFoods(_ context.Context, foods []models.FoodItem) ([]models.NutrientAnalysis, bool, error) {
	m.calls++
	if m.err != nil {
		return nil, false, m.err
	}
	if m.records != nil {
		return m.records, m.usedFallback, nil
	}
	records := make([]models.NutrientAnalysis, 0, len(foods))
	for _, f := range foods {
		records = append(records, models.NutrientAnalysis{
			FoodName: f.FoodName,
			MealType: f.MealType,
			Serving:  models.Serving{Description: "1 serving", Grams: 100},
			Ingredients: []models.Ingredient{
				{Name: f.FoodName, PortionPercent: 100},
			},
			Nutrients: map[string]models.NutrientEntry{},
		})
	}
	return records, m.usedFallback, nil
}

// --- Mock cache ---

// memCache is a map-backed cache.Cache good enough for handler tests.
type memCache struct {
	mu        sync.Mutex
	entries   map[string][]byte
	snapshots map[uuid.UUID][]byte
	counter   int64
	err       error
}

func newMemCache() *memCache {
	return &memCache{
		entries:   make(map[string][]byte),
		snapshots: make(map[uuid.UUID][]byte),
	}
}

func (m *memCache) Ping(_ context.Context) error { return m.err }

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) SetJobSnapshot(_ context.Context, id uuid.UUID, doc []byte, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = append([]byte(nil), doc...)
	return nil
}

func (m *memCache) GetJobSnapshot(_ context.Context, id uuid.UUID) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.snapshots[id]
	return doc, ok, nil
}

func (m *memCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.counter, nil
}

// --- Mock enqueuer ---

type mockEnqueuer struct {
	messages []dispatch.Message
	err      error
}

func (m *mockEnqueuer) Enqueue(_ context.Context, msg dispatch.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// --- helpers ---

func dataBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	return e
}
