package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/settings"
	"github.com/hoanghai1803/driverpro/internal/views"
)

// preferencesResponse is the body of the preference endpoints.
type preferencesResponse struct {
	Status      string                 `json:"status"`
	Preferences models.UserPreferences `json:"preferences"`
	Form        settings.Form          `json:"form"`
	Message     string                 `json:"message,omitempty"`
}

// GetPreferences handles GET /api/preferences. It returns the saved
// preferences together with the prefilled settings form.
func GetPreferences(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		status := views.StatusOf(s)
		if status != views.StatusReady {
			writeJSON(w, statusCode(status), map[string]string{"status": status})
			return
		}

		prefs := s.Preferences()
		writeJSON(w, http.StatusOK, preferencesResponse{
			Status:      "saved",
			Preferences: prefs,
			Form:        settings.FormFor(prefs),
		})
	}
}

// UpdatePreferences handles PUT /api/preferences. The body is a settings
// form with string fields. An unchanged form is a no-op.
func UpdatePreferences(sessions *session.Manager, svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		status := views.StatusOf(s)
		if status != views.StatusReady {
			writeJSON(w, statusCode(status), map[string]string{"status": status})
			return
		}

		var form settings.Form
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		prefs, err := svc.Save(r.Context(), s, form)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, preferencesResponse{
				Status:      "saved",
				Preferences: prefs,
				Form:        settings.FormFor(prefs),
				Message:     settings.Message(nil),
			})
		case errors.Is(err, settings.ErrNoChanges):
			writeJSON(w, http.StatusOK, preferencesResponse{
				Status:      "unchanged",
				Preferences: prefs,
				Form:        settings.FormFor(prefs),
			})
		case errors.Is(err, settings.ErrInvalidMetrics):
			writeError(w, http.StatusBadRequest, settings.Message(err))
		case errors.Is(err, settings.ErrNotReady):
			writeError(w, http.StatusConflict, settings.Message(err))
		default:
			writeError(w, http.StatusInternalServerError, settings.Message(err))
		}
	}
}
