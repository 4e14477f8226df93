package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/views"
)

// GetRoutes handles GET /api/routes. Until the session is ready it answers
// with the bare status.
func GetRoutes(sessions *session.Manager, source *opportunities.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		if status := views.StatusOf(s); status != views.StatusReady {
			writeJSON(w, statusCode(status), views.Routes(s, nil))
			return
		}

		gigs, err := source.Gigs(r.Context())
		if err != nil {
			slog.Error("failed to load gigs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load gigs")
			return
		}
		writeJSON(w, http.StatusOK, views.Routes(s, gigs))
	}
}

// GetEstimate handles GET /api/estimate.
func GetEstimate(sessions *session.Manager, source *opportunities.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		if status := views.StatusOf(s); status != views.StatusReady {
			writeJSON(w, statusCode(status), views.Estimate(s, nil))
			return
		}

		gigs, err := source.Gigs(r.Context())
		if err != nil {
			slog.Error("failed to load gigs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load gigs")
			return
		}
		writeJSON(w, http.StatusOK, views.Estimate(s, gigs))
	}
}

// GetHeatmap handles GET /api/heatmap.
func GetHeatmap(sessions *session.Manager, source *opportunities.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		if status := views.StatusOf(s); status != views.StatusReady {
			writeJSON(w, statusCode(status), views.Heatmap(s, nil))
			return
		}

		areas, err := source.AreaDemand(r.Context())
		if err != nil {
			slog.Error("failed to load area demand", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load area demand")
			return
		}
		writeJSON(w, http.StatusOK, views.Heatmap(s, areas))
	}
}

// dashboardResponse is every panel of the dashboard in one body.
type dashboardResponse struct {
	Header   views.HeaderView   `json:"header"`
	Routes   views.RoutesView   `json:"routes"`
	Estimate views.EstimateView `json:"estimate"`
	Heatmap  views.HeatmapView  `json:"heatmap"`
}

// GetDashboard handles GET /api/dashboard. It loads gigs and area demand
// together and returns the header and all three panels.
func GetDashboard(sessions *session.Manager, source *opportunities.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		status := views.StatusOf(s)
		if status != views.StatusReady {
			writeJSON(w, statusCode(status), dashboardResponse{
				Header:   views.Header(s),
				Routes:   views.Routes(s, nil),
				Estimate: views.Estimate(s, nil),
				Heatmap:  views.Heatmap(s, nil),
			})
			return
		}

		snap, err := source.Snapshot(r.Context())
		if err != nil {
			slog.Error("failed to load opportunities", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load opportunities")
			return
		}
		writeJSON(w, http.StatusOK, dashboardResponse{
			Header:   views.Header(s),
			Routes:   views.Routes(s, snap.Gigs),
			Estimate: views.Estimate(s, snap.Gigs),
			Heatmap:  views.Heatmap(s, snap.AreaDemand),
		})
	}
}
