package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarpatil/nutriscope/internal/api/handler"
	"github.com/stretchr/testify/assert"
)

var healthInfo = handler.HealthInfo{Provider: "mock", CatalogVersion: "2024-06"}

func getHealth(h http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHealth_AllOK(t *testing.T) {
	h := handler.NewHealthHandler(newMemCache(), newMemCache(), healthInfo)

	w := getHealth(h)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataBody(t, w)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "ok", data["database"])
	assert.Equal(t, "ok", data["cache"])
	assert.Equal(t, "mock", data["provider"])
	assert.Equal(t, "2024-06", data["catalog_version"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := handler.NewHealthHandler(&memCache{err: assert.AnError}, newMemCache(), healthInfo)

	w := getHealth(h)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataBody(t, w)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "unavailable", data["database"])
}

func TestHealth_DisabledComponents(t *testing.T) {
	h := handler.NewHealthHandler(nil, nil, healthInfo)

	w := getHealth(h)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataBody(t, w)
	// Running without a database or Redis is a supported configuration,
	// not a degradation.
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "disabled", data["database"])
	assert.Equal(t, "disabled", data["cache"])
}
