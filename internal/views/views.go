// Package views derives the dashboard panels from a session and the seed
// data. Every function is pure: it reads the session and returns a fresh
// view model, so panels always reflect the latest preferences.
package views

import (
	"github.com/hoanghai1803/driverpro/internal/calculator"
	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/session"
)

// Panel status values.
const (
	StatusWaiting         = "waiting"
	StatusUnauthenticated = "unauthenticated"
	StatusFailed          = "failed"
	StatusReady           = "ready"
)

// Service status indicator values shown in the header.
const (
	ServicePending = "pending"
	ServiceOnline  = "online"
	ServiceError   = "error"
)

// Title is the dashboard heading.
const Title = "Roadie Driver Pro (Philly)"

// Reader is the read-only part of a session the views need.
// *session.Session satisfies it.
type Reader interface {
	Status() session.Status
	Preferences() models.UserPreferences
	Identity() *models.Identity
	DemoMode() bool
	Err() error
}

// RoutesView is the "Best Routes" panel.
type RoutesView struct {
	Status   string             `json:"status"`
	HomeZone string             `json:"home_zone,omitempty"`
	Gigs     []models.RankedGig `json:"gigs,omitempty"`
}

// EstimateView is the "Daily Estimate" panel.
type EstimateView struct {
	Status     string                 `json:"status"`
	AvgPay     float64                `json:"avg_pay,omitempty"`
	AvgTime    int                    `json:"avg_time,omitempty"`
	Projection *calculator.Projection `json:"projection,omitempty"`
	ActualPay  float64                `json:"simulated_actual_pay,omitempty"`
}

// HeatmapView is the "Public Data Map" panel.
type HeatmapView struct {
	Status   string                 `json:"status"`
	HomeZone string                 `json:"home_zone,omitempty"`
	Rows     []models.AreaDemandRow `json:"rows,omitempty"`
}

// HeaderView is the dashboard header.
type HeaderView struct {
	Title          string `json:"title"`
	Status         string `json:"status"`
	DemoMode       bool   `json:"demo_mode"`
	UserID         string `json:"user_id,omitempty"`
	Provider       string `json:"provider,omitempty"`
	CanEdit        bool   `json:"can_edit"`
	RoutesService  string `json:"routes_service"`
	HeatmapService string `json:"heatmap_service"`
	Error          string `json:"error,omitempty"`
}

// StatusOf maps a session's lifecycle to a panel status.
func StatusOf(r Reader) string {
	switch r.Status() {
	case session.StatusReady:
		return StatusReady
	case session.StatusFailed:
		return StatusFailed
	case session.StatusUnauthenticated:
		return StatusUnauthenticated
	default:
		return StatusWaiting
	}
}

// Routes ranks gigs for the session's home zone.
func Routes(r Reader, gigs []models.Gig) RoutesView {
	v := RoutesView{Status: StatusOf(r)}
	if v.Status != StatusReady {
		return v
	}
	prefs := r.Preferences()
	v.HomeZone = prefs.HomeZone
	v.Gigs = calculator.RankGigs(gigs, prefs.HomeZone)
	return v
}

// Estimate projects the day from the session's averages. gigs are the
// available gigs; their pay also feeds the simulated actual total.
func Estimate(r Reader, gigs []models.Gig) EstimateView {
	v := EstimateView{Status: StatusOf(r)}
	if v.Status != StatusReady {
		return v
	}
	prefs := r.Preferences()
	p := calculator.Project(len(gigs), prefs.AvgPay, prefs.AvgTime)
	v.AvgPay = prefs.AvgPay
	v.AvgTime = prefs.AvgTime
	v.Projection = &p
	v.ActualPay = calculator.SimulatedActualPay(gigs)
	return v
}

// Heatmap highlights the session's home zone in the area table.
func Heatmap(r Reader, areas []models.AreaDemand) HeatmapView {
	v := HeatmapView{Status: StatusOf(r)}
	if v.Status != StatusReady {
		return v
	}
	prefs := r.Preferences()
	v.HomeZone = prefs.HomeZone
	v.Rows = calculator.HighlightAreas(areas, prefs.HomeZone)
	return v
}

// Header describes the identity badge and service indicators.
func Header(r Reader) HeaderView {
	v := HeaderView{
		Title:          Title,
		Status:         StatusOf(r),
		DemoMode:       r.DemoMode(),
		RoutesService:  ServicePending,
		HeatmapService: ServicePending,
	}

	switch v.Status {
	case StatusReady:
		if ident := r.Identity(); ident != nil {
			v.UserID = ident.UID
			v.Provider = ident.Provider
			v.CanEdit = true
		}
		v.RoutesService = ServiceOnline
		v.HeatmapService = ServiceOnline
	case StatusFailed:
		v.RoutesService = ServiceError
		v.HeatmapService = ServiceError
		if err := r.Err(); err != nil {
			v.Error = err.Error()
		}
	}
	return v
}
