package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/views"
)

func TestGetRoutes_Ready(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/routes", nil), s)
	w := httptest.NewRecorder()
	GetRoutes(env.sessions, env.source).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var got views.RoutesView
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != views.StatusReady || got.HomeZone != "Center City" {
		t.Errorf("got status %q home zone %q", got.Status, got.HomeZone)
	}
	if len(got.Gigs) != 5 {
		t.Fatalf("got %d gigs, want 5", len(got.Gigs))
	}
	if got.Gigs[0].ID != 1 {
		t.Errorf("first gig = %d, want 1", got.Gigs[0].ID)
	}
}

func TestViews_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	handlers := map[string]http.HandlerFunc{
		"routes":    GetRoutes(env.sessions, env.source),
		"estimate":  GetEstimate(env.sessions, env.source),
		"heatmap":   GetHeatmap(env.sessions, env.source),
		"dashboard": GetDashboard(env.sessions, env.source),
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/"+name, nil))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestViews_WaitingUntilReady(t *testing.T) {
	// A connector that blocks until the session is torn down keeps it
	// connecting.
	boot := session.NewBootstrapper(func(ctx context.Context) (*session.Backend, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, session.Options{})
	sessions := session.NewManager(boot)
	t.Cleanup(sessions.Close)

	s, err := sessions.Login("driver-token")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/estimate", nil), s)
	w := httptest.NewRecorder()
	GetEstimate(sessions, opportunities.NewSource(0)).ServeHTTP(w, r)

	if w.Code != http.StatusAccepted {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusAccepted)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"status":"waiting"}` {
		t.Errorf("got body %s, want {\"status\":\"waiting\"}", body)
	}
}

func TestGetEstimate_Ready(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/estimate", nil), s)
	w := httptest.NewRecorder()
	GetEstimate(env.sessions, env.source).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var got views.EstimateView
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Projection == nil {
		t.Fatal("projection missing")
	}
	if got.Projection.Pay != 175 || got.Projection.TimeMinutes != 280 {
		t.Errorf("projection = %+v, want pay 175 time 280", got.Projection)
	}
	if math.Abs(got.ActualPay-190.5) > 1e-9 {
		t.Errorf("simulated_actual_pay = %v, want 190.5", got.ActualPay)
	}
}

func TestGetHeatmap_Ready(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/heatmap", nil), s)
	w := httptest.NewRecorder()
	GetHeatmap(env.sessions, env.source).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var got views.HeatmapView
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(got.Rows))
	}
	if !got.Rows[0].IsHomeZone || got.Rows[0].EveningLevel != "Very High" {
		t.Errorf("first row = %+v, want home zone with Very High evening", got.Rows[0])
	}
}

func TestGetDashboard_Ready(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), s)
	w := httptest.NewRecorder()
	GetDashboard(env.sessions, env.source).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var got dashboardResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Header.UserID != s.UserID() {
		t.Errorf("header user = %q, want %q", got.Header.UserID, s.UserID())
	}
	if len(got.Routes.Gigs) != 5 {
		t.Errorf("got %d gigs, want 5", len(got.Routes.Gigs))
	}
	if got.Estimate.Projection == nil || got.Estimate.Projection.Gigs != 7 {
		t.Errorf("projection = %+v, want 7 gigs", got.Estimate.Projection)
	}
	if len(got.Heatmap.Rows) != 4 {
		t.Errorf("got %d heatmap rows, want 4", len(got.Heatmap.Rows))
	}
}
