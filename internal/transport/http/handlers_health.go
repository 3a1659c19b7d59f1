package http

import (
	"context"
	"net/http"
	"time"

	"expedientes/internal/platform/metrics"
	"expedientes/pkg/httputil"
)

// Pinger is the backend connectivity probe. The sqlx pool implements it; a
// nil Pinger means the service runs on in-memory stores.
type Pinger interface {
	Health(ctx context.Context) error
}

type healthHandler struct {
	db      Pinger
	metrics *metrics.Metrics
	started time.Time
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	database := "memoria"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			h.metrics.IncDBError()
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"success": false,
				"error":   "Base de datos no disponible",
			})
			return
		}
		database = "ok"
	}

	httputil.WriteSuccess(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": database,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
