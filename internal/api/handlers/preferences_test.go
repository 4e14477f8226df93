package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/preferences"
	"github.com/hoanghai1803/driverpro/internal/settings"
	"github.com/hoanghai1803/driverpro/internal/views"
)

func TestGetPreferencesDefaults(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/preferences", nil), s)
	w := httptest.NewRecorder()
	GetPreferences(env.sessions).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var got preferencesResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Preferences != models.DefaultPreferences() {
		t.Errorf("preferences = %+v, want defaults", got.Preferences)
	}
	if got.Form.AvgPay != "25.00" || got.Form.AvgTime != "40" {
		t.Errorf("form = %+v, want prefilled 25.00/40", got.Form)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	// PUT preferences.
	body := `{"homeZone": "Fishtown", "avgPay": "31.25", "avgTime": "33"}`
	putR := withSession(httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(body)), s)
	putW := httptest.NewRecorder()

	UpdatePreferences(env.sessions, env.settings).ServeHTTP(putW, putR)

	if putW.Code != http.StatusOK {
		t.Fatalf("PUT got status %d, want %d; body: %s", putW.Code, http.StatusOK, putW.Body.String())
	}
	var put preferencesResponse
	if err := json.NewDecoder(putW.Body).Decode(&put); err != nil {
		t.Fatalf("decoding PUT response: %v", err)
	}
	if put.Message != settings.MessageSaved {
		t.Errorf("message = %q, want %q", put.Message, settings.MessageSaved)
	}

	want := models.UserPreferences{HomeZone: "Fishtown", AvgPay: 31.25, AvgTime: 33}
	if s.Preferences() != want {
		t.Errorf("session preferences = %+v, want %+v", s.Preferences(), want)
	}

	// The document store holds the same values.
	stored, found, err := env.repo.Load(context.Background(), s.UserID())
	if err != nil || !found {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if stored != want {
		t.Errorf("stored preferences = %+v, want %+v", stored, want)
	}
	doc, err := env.store.GetDocument(context.Background(), preferences.DocumentPath("test-app", s.UserID()))
	if err != nil {
		t.Fatalf("GetDocument() error: %v", err)
	}
	if _, ok := doc["lastUpdated"].(string); !ok {
		t.Errorf("lastUpdated = %v, want a timestamp string", doc["lastUpdated"])
	}
}

func TestUpdatePreferences_Unchanged(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	body := `{"homeZone": "Center City", "avgPay": "25", "avgTime": "40"}`
	r := withSession(httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(body)), s)
	w := httptest.NewRecorder()
	UpdatePreferences(env.sessions, env.settings).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	var got preferencesResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != "unchanged" {
		t.Errorf("status = %q, want %q", got.Status, "unchanged")
	}
	if _, found, _ := env.repo.Load(context.Background(), s.UserID()); found {
		t.Error("document written for an unchanged form")
	}
}

func TestUpdatePreferences_Invalid(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	body := `{"homeZone": "Center City", "avgPay": "-5", "avgTime": "40"}`
	r := withSession(httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(body)), s)
	w := httptest.NewRecorder()
	UpdatePreferences(env.sessions, env.settings).ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["error"] != settings.MessageInvalid {
		t.Errorf("error = %q, want %q", got["error"], settings.MessageInvalid)
	}
	if s.Preferences().AvgPay != 25.00 {
		t.Errorf("avgPay = %v, want unchanged 25.00", s.Preferences().AvgPay)
	}
}

func TestUpdatePreferences_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	body := `{"homeZone": "Fishtown", "avgPay": "30", "avgTime": "30"}`
	r := httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	UpdatePreferences(env.sessions, env.settings).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUpdatePreferences_BadJSON(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(`{"avgPay": 30}`)), s)
	w := httptest.NewRecorder()
	UpdatePreferences(env.sessions, env.settings).ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdatePreferences_ExtremeValuesKeepEstimateValid(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	for _, body := range []string{
		`{"homeZone": "Fishtown", "avgPay": "1e308", "avgTime": "40"}`,
		`{"homeZone": "Fishtown", "avgPay": "25", "avgTime": "2000000000000000000"}`,
	} {
		r := withSession(httptest.NewRequest(http.MethodPut, "/api/preferences", bytes.NewBufferString(body)), s)
		w := httptest.NewRecorder()
		UpdatePreferences(env.sessions, env.settings).ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("PUT %s: got status %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
	if s.Preferences() != models.DefaultPreferences() {
		t.Errorf("session preferences = %+v, want defaults", s.Preferences())
	}

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/estimate", nil), s)
	w := httptest.NewRecorder()
	GetEstimate(env.sessions, env.source).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/estimate status %d, want %d", w.Code, http.StatusOK)
	}
	var got views.EstimateView
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding estimate: %v", err)
	}
	if got.Projection == nil || got.Projection.HourlyRate != 37.5 {
		t.Errorf("projection = %+v, want hourly rate 37.5", got.Projection)
	}
}
