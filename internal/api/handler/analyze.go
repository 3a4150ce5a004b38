// Package handler contains the HTTP handlers for the public API. Handlers
// depend on narrow interfaces so tests can stand in fakes for the analyzer,
// store, and queue.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sagarpatil/nutriscope/internal/api/response"
	"github.com/sagarpatil/nutriscope/internal/cache"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// analysisCacheTTL bounds how long a validated sync analysis is served from
// cache. Fallback results are never cached.
const analysisCacheTTL = time.Hour

// FoodAnalyzer is the interface the sync analysis handler depends on.
type FoodAnalyzer interface {
	AnalyzeFoods(ctx context.Context, foods []models.FoodItem) ([]models.NutrientAnalysis, bool, error)
}

type analyzeResponse struct {
	Records      []models.NutrientAnalysis `json:"records"`
	UsedFallback bool                      `json:"used_fallback"`
	Cached       bool                      `json:"cached"`
}

// NewAnalyzeFoodHandler returns the handler for POST /api/v1/analyze-food.
// The call is synchronous: the client waits for the model round trip.
func NewAnalyzeFoodHandler(svc FoodAnalyzer, c cache.Cache, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Foods []models.FoodItem `json:"foods"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if err := validateFoods(req.Foods); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		key := cache.AnalysisResultKey(req.Foods)
		if raw, ok, err := c.Get(r.Context(), key); err == nil && ok {
			var records []models.NutrientAnalysis
			if err := json.Unmarshal(raw, &records); err == nil {
				response.JSON(w, analyzeResponse{Records: records, Cached: true})
				return
			}
			// Unreadable entry, drop it and recompute.
			_ = c.Delete(r.Context(), key)
		}

		records, usedFallback, err := svc.AnalyzeFoods(r.Context(), req.Foods)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrCompletionTimeout):
				response.Error(w, http.StatusGatewayTimeout, "COMPLETION_TIMEOUT",
					"Analysis took too long and was cancelled", nil)
			case errors.Is(err, models.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE",
					"The model provider is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		if !usedFallback {
			if raw, err := json.Marshal(records); err == nil {
				if err := c.Set(r.Context(), key, raw, analysisCacheTTL); err != nil {
					logger.Warn("cache analysis result", "error", err)
				}
			}
		}

		response.JSON(w, analyzeResponse{Records: records, UsedFallback: usedFallback})
	}
}
