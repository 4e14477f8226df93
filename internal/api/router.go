package api

import (
	"html/template"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoanghai1803/driverpro/internal/api/handlers"
	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/places"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/settings"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Sessions  *session.Manager
	Source    *opportunities.Source
	Settings  *settings.Service
	Suggester places.Suggester
	Health    handlers.Pinger
	Templates *template.Template
}

// NewRouter creates and configures the HTTP router with the dashboard pages,
// the JSON API, health and metrics.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	// Server-rendered dashboard.
	r.Get("/", handlers.Dashboard(d.Templates, d.Sessions, d.Source))
	r.Post("/login", handlers.Login(d.Templates, d.Sessions))
	r.Post("/login/demo", handlers.LoginDemo(d.Sessions))
	r.Post("/logout", handlers.Logout(d.Sessions))
	r.Post("/settings", handlers.SaveSettings(d.Templates, d.Sessions, d.Source, d.Settings))

	// API sub-router.
	r.Route("/api", func(api chi.Router) {
		api.Post("/session", handlers.CreateSession(d.Sessions))
		api.Get("/session", handlers.GetSession(d.Sessions))
		api.Delete("/session", handlers.DeleteSession(d.Sessions))

		api.Get("/routes", handlers.GetRoutes(d.Sessions, d.Source))
		api.Get("/estimate", handlers.GetEstimate(d.Sessions, d.Source))
		api.Get("/heatmap", handlers.GetHeatmap(d.Sessions, d.Source))
		api.Get("/dashboard", handlers.GetDashboard(d.Sessions, d.Source))

		api.Get("/preferences", handlers.GetPreferences(d.Sessions))
		api.Put("/preferences", handlers.UpdatePreferences(d.Sessions, d.Settings))

		api.Get("/suggestions", handlers.GetSuggestions(d.Suggester))
	})

	r.Get("/healthz", handlers.Healthz(d.Health, d.Sessions))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
