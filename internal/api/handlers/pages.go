package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/settings"
	"github.com/hoanghai1803/driverpro/internal/views"
)

const loginErrorMessage = "Please enter a valid token (at least 5 characters)."

// Dashboard tabs.
const (
	TabRoutes   = "routes"
	TabEstimate = "estimate"
	TabHeatmap  = "heatmap"
)

// pageData is everything the dashboard template renders.
type pageData struct {
	Header views.HeaderView
	Tab    string

	Routes   *views.RoutesView
	Estimate *views.EstimateView
	Heatmap  *views.HeatmapView

	ShowSettings  bool
	Form          settings.Form
	CanSave       bool
	Message       string
	MessageIsErr  bool
	LoginError    string
	LoginTokenMin int
}

func tabFrom(r *http.Request) string {
	return tabOrDefault(r.URL.Query().Get("tab"))
}

// render executes the named template into a buffer first so a template
// error never leaves a half-written page.
func render(w http.ResponseWriter, tmpl *template.Template, status int, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderDashboard fills page for s and renders the page matching its
// status: login, connecting, failed or the dashboard itself.
func renderDashboard(w http.ResponseWriter, r *http.Request, tmpl *template.Template, source *opportunities.Source, s *session.Session, page pageData, status int) {
	page.Header = views.Header(s)
	page.LoginTokenMin = session.MinTokenLength

	switch page.Header.Status {
	case views.StatusUnauthenticated:
		render(w, tmpl, status, "login", page)
		return
	case views.StatusWaiting:
		render(w, tmpl, status, "connecting", page)
		return
	case views.StatusFailed:
		render(w, tmpl, http.StatusServiceUnavailable, "failed", page)
		return
	}

	// Both panels' data load together, as the header reports on both feeds.
	snap, err := source.Snapshot(r.Context())
	if err != nil {
		slog.Error("failed to load opportunities", "error", err)
		http.Error(w, "Failed to load opportunities", http.StatusInternalServerError)
		return
	}
	switch page.Tab {
	case TabEstimate:
		v := views.Estimate(s, snap.Gigs)
		page.Estimate = &v
	case TabHeatmap:
		v := views.Heatmap(s, snap.AreaDemand)
		page.Heatmap = &v
	default:
		v := views.Routes(s, snap.Gigs)
		page.Routes = &v
	}

	if page.ShowSettings {
		if page.Form == (settings.Form{}) {
			page.Form = settings.FormFor(s.Preferences())
		}
		page.CanSave = settings.HasChanges(page.Form, s.Preferences())
	}
	render(w, tmpl, status, "dashboard", page)
}

// Dashboard handles GET /.
func Dashboard(tmpl *template.Template, sessions *session.Manager, source *opportunities.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := lookupSession(r, sessions)
		page := pageData{
			Tab:          tabFrom(r),
			ShowSettings: r.URL.Query().Get("settings") == "1",
		}
		if r.URL.Query().Get("saved") == "1" {
			page.Message = settings.MessageSaved
		}
		renderDashboard(w, r, tmpl, source, s, page, http.StatusOK)
	}
}

// Login handles POST /login with a form field "token".
func Login(tmpl *template.Template, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}

		s, err := sessions.Login(r.PostForm.Get("token"))
		if err != nil {
			if !errors.Is(err, session.ErrTokenTooShort) {
				slog.Error("failed to create session", "error", err)
			}
			render(w, tmpl, http.StatusBadRequest, "login", pageData{
				Header:        views.Header(session.New("", "")),
				LoginError:    loginErrorMessage,
				LoginTokenMin: session.MinTokenLength,
			})
			return
		}

		setSessionCookie(w, s.ID())
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LoginDemo handles POST /login/demo.
func LoginDemo(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Demo()
		if err != nil {
			slog.Error("failed to create demo session", "error", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, s.ID())
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Logout handles POST /logout.
func Logout(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, ok := lookupSession(r, sessions); ok {
			sessions.Logout(s.ID())
		}
		clearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// SaveSettings handles POST /settings. A successful save redirects back to
// the dashboard; any other outcome re-renders the modal with the typed
// values and the status message.
func SaveSettings(tmpl *template.Template, sessions *session.Manager, source *opportunities.Source, svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(r, sessions)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}

		form := settings.Form{
			HomeZone: r.PostForm.Get("homeZone"),
			AvgPay:   r.PostForm.Get("avgPay"),
			AvgTime:  r.PostForm.Get("avgTime"),
		}
		tab := r.PostForm.Get("tab")

		_, err := svc.Save(r.Context(), s, form)
		if err == nil || errors.Is(err, settings.ErrNoChanges) {
			target := "/?tab=" + tabOrDefault(tab)
			if err == nil {
				target += "&saved=1"
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		status := http.StatusBadRequest
		if errors.Is(err, settings.ErrSaveFailed) {
			status = http.StatusInternalServerError
		}
		page := pageData{
			Tab:          tabOrDefault(tab),
			ShowSettings: true,
			Form:         form,
			Message:      settings.Message(err),
			MessageIsErr: true,
		}
		renderDashboard(w, r, tmpl, source, s, page, status)
	}
}

func tabOrDefault(tab string) string {
	switch tab {
	case TabEstimate, TabHeatmap:
		return tab
	default:
		return TabRoutes
	}
}
