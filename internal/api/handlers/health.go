package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/driverpro/internal/session"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz handles GET /healthz. The body reports the number of live
// sessions alongside the store status.
func Healthz(p Pinger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "sessions": sessions.Len()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": sessions.Len()})
	}
}
