package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)

	body := `{"token": "abcdef"}`
	r := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	CreateSession(env.sessions).ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	id, _ := got["id"].(string)
	if _, ok := env.sessions.Get(id); !ok {
		t.Errorf("session %q not registered", id)
	}
	if got["demo_mode"] != false {
		t.Errorf("demo_mode = %v, want false", got["demo_mode"])
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != id {
		t.Errorf("cookies = %v, want %s=%s", cookies, SessionCookie, id)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestCreateSession_Demo(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(`{"demo": true}`))
	w := httptest.NewRecorder()

	CreateSession(env.sessions).ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusCreated)
	}
	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["demo_mode"] != true {
		t.Errorf("demo_mode = %v, want true", got["demo_mode"])
	}
}

func TestCreateSession_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short token", `{"token": "abcd"}`},
		{"empty token", `{"token": ""}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			CreateSession(env.sessions).ServeHTTP(w, r)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
			}
			if env.sessions.Len() != 0 {
				t.Errorf("got %d sessions, want 0", env.sessions.Len())
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodGet, "/api/session", nil), s)
	w := httptest.NewRecorder()
	GetSession(env.sessions).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["user_id"] != s.UserID() {
		t.Errorf("user_id = %v, want %q", got["user_id"], s.UserID())
	}
	if got["can_edit"] != true {
		t.Errorf("can_edit = %v, want true", got["can_edit"])
	}
}

func TestGetSession_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	GetSession(env.sessions).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t)

	r := withSession(httptest.NewRequest(http.MethodDelete, "/api/session", nil), s)
	w := httptest.NewRecorder()
	DeleteSession(env.sessions).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if _, ok := env.sessions.Get(s.ID()); ok {
		t.Error("session still registered after delete")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %v, want an expired session cookie", cookies)
	}
}
