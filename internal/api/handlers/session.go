package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/views"
)

// loginRequest is the body of POST /api/session.
type loginRequest struct {
	Token string `json:"token"`
	Demo  bool   `json:"demo"`
}

// CreateSession handles POST /api/session. It validates the token (or takes
// the demo path), registers a session, sets the session cookie and starts
// the bootstrap in the background.
func CreateSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		var (
			s   *session.Session
			err error
		)
		if body.Demo {
			s, err = sessions.Demo()
		} else {
			s, err = sessions.Login(body.Token)
		}
		if err != nil {
			if errors.Is(err, session.ErrTokenTooShort) {
				writeError(w, http.StatusBadRequest, loginErrorMessage)
				return
			}
			slog.Error("failed to create session", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create session")
			return
		}

		setSessionCookie(w, s.ID())
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":        s.ID(),
			"status":    views.StatusOf(s),
			"demo_mode": s.DemoMode(),
		})
	}
}

// GetSession handles GET /api/session. It returns the header view of the
// caller's session.
func GetSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		v := views.Header(s)
		writeJSON(w, statusCode(v.Status), v)
	}
}

// DeleteSession handles DELETE /api/session. It tears the session down and
// clears the cookie.
func DeleteSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, ok := lookupSession(r, sessions); ok {
			sessions.Logout(s.ID())
		}
		clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": views.StatusUnauthenticated})
	}
}
