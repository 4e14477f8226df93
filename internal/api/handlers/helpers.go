package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/views"
)

// SessionCookie names the cookie holding the opaque session id.
const SessionCookie = "driverpro_session"

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json. v is
// encoded before the header is written, so an unencodable value yields a
// 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusCode maps a panel status to the HTTP status a view answers with.
func statusCode(status string) int {
	switch status {
	case views.StatusReady:
		return http.StatusOK
	case views.StatusWaiting:
		return http.StatusAccepted
	case views.StatusFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

// lookupSession returns the session named by the request cookie. Without a
// live session it returns an unauthenticated placeholder and false.
func lookupSession(r *http.Request, sessions *session.Manager) (*session.Session, bool) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if s, ok := sessions.Get(c.Value); ok {
			return s, true
		}
	}
	return session.New("", ""), false
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
