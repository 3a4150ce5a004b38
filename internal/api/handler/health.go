package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sagarpatil/nutriscope/internal/api/response"
)

// Pinger is anything with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthInfo is the static identity reported by the health endpoint.
type HealthInfo struct {
	Provider       string
	CatalogVersion string
}

type healthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	Cache          string `json:"cache"`
	Provider       string `json:"provider"`
	CatalogVersion string `json:"catalog_version"`
}

// NewHealthHandler returns the handler for GET /api/v1/health. The service
// stays "degraded", not down, when a backend is unreachable: analysis still
// works through the in-memory fallbacks.
func NewHealthHandler(db, c Pinger, info HealthInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:         "ok",
			Database:       componentStatus(ctx, db),
			Cache:          componentStatus(ctx, c),
			Provider:       info.Provider,
			CatalogVersion: info.CatalogVersion,
		}
		if resp.Database == "unavailable" || resp.Cache == "unavailable" {
			resp.Status = "degraded"
		}
		response.JSON(w, resp)
	}
}

func componentStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
