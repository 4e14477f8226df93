// Package settings implements the preference edit flow: prefill, validate,
// detect changes, persist and commit.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/observability"
)

// User-facing status messages.
const (
	MessageSaved        = "Settings saved successfully!"
	MessageInvalid      = "Error: Pay and Time must be valid positive numbers."
	MessageSaveFailed   = "Error: Failed to save settings."
	MessageNotConnected = "Error: Not connected. Please wait for the dashboard to load."
)

var (
	// ErrNoChanges is returned when the form matches the saved preferences.
	// Nothing is written.
	ErrNoChanges = errors.New("no changes to save")

	// ErrInvalidMetrics is returned when avgPay or avgTime is not a
	// strictly positive number within its upper bound.
	ErrInvalidMetrics = errors.New(MessageInvalid)

	// ErrSaveFailed is returned when the document store rejects the write.
	ErrSaveFailed = errors.New(MessageSaveFailed)

	// ErrNotReady is returned when the session has no identity yet.
	ErrNotReady = errors.New(MessageNotConnected)
)

// Form holds the raw values the driver typed.
type Form struct {
	HomeZone string `json:"homeZone"`
	AvgPay   string `json:"avgPay"`
	AvgTime  string `json:"avgTime"`
}

// FormFor prefills a form from saved preferences.
func FormFor(p models.UserPreferences) Form {
	return Form{
		HomeZone: p.HomeZone,
		AvgPay:   strconv.FormatFloat(p.AvgPay, 'f', 2, 64),
		AvgTime:  strconv.Itoa(p.AvgTime),
	}
}

// Parse validates the form. avgTime is whole minutes; a fractional value is
// truncated before the positivity check, so "0.5" is rejected. avgPay may
// not exceed models.MaxAvgPay and avgTime may not exceed models.MaxAvgTime.
func (f Form) Parse() (models.UserPreferences, error) {
	pay, err := strconv.ParseFloat(strings.TrimSpace(f.AvgPay), 64)
	if err != nil || math.IsNaN(pay) || pay <= 0 || pay > models.MaxAvgPay {
		return models.UserPreferences{}, ErrInvalidMetrics
	}

	minutes, err := strconv.ParseFloat(strings.TrimSpace(f.AvgTime), 64)
	if err != nil || math.IsNaN(minutes) || minutes < 1 || minutes >= models.MaxAvgTime+1 {
		return models.UserPreferences{}, ErrInvalidMetrics
	}
	avgTime := int(math.Trunc(minutes))

	return models.UserPreferences{
		HomeZone: f.HomeZone,
		AvgPay:   pay,
		AvgTime:  avgTime,
	}, nil
}

// HasChanges reports whether the form differs from saved. A numeric field
// that does not parse counts as a change so that submitting it surfaces the
// validation error.
func HasChanges(f Form, saved models.UserPreferences) bool {
	if f.HomeZone != saved.HomeZone {
		return true
	}
	pay, err := strconv.ParseFloat(strings.TrimSpace(f.AvgPay), 64)
	if err != nil || pay != saved.AvgPay {
		return true
	}
	minutes, err := strconv.ParseFloat(strings.TrimSpace(f.AvgTime), 64)
	if err != nil || math.Trunc(minutes) != float64(saved.AvgTime) {
		return true
	}
	return false
}

// Target is the session a save applies to.
type Target interface {
	UserID() string
	Preferences() models.UserPreferences
	UpdatePreferences(models.UserPreferences)
}

// Saver persists preferences for a user.
type Saver interface {
	Save(ctx context.Context, uid string, prefs models.UserPreferences, at time.Time) error
}

// Service runs the save flow.
type Service struct {
	saver Saver
	now   func() time.Time
}

// NewService creates a Service writing through saver.
func NewService(saver Saver) *Service {
	return &Service{saver: saver, now: time.Now}
}

// Save validates form and, if it differs from the session's preferences,
// writes it and then commits it to the session. The session is untouched
// unless the write succeeds.
func (s *Service) Save(ctx context.Context, t Target, form Form) (models.UserPreferences, error) {
	current := t.Preferences()
	if !HasChanges(form, current) {
		observability.PreferenceSavesTotal.WithLabelValues("unchanged").Inc()
		return current, ErrNoChanges
	}

	uid := t.UserID()
	if uid == "" {
		return current, ErrNotReady
	}

	prefs, err := form.Parse()
	if err != nil {
		observability.PreferenceSavesTotal.WithLabelValues("invalid").Inc()
		return current, err
	}

	if err := s.saver.Save(ctx, uid, prefs, s.now().UTC()); err != nil {
		slog.Error("error saving settings", "uid", uid, "error", err)
		observability.PreferenceSavesTotal.WithLabelValues("failed").Inc()
		return current, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	t.UpdatePreferences(prefs)
	observability.PreferenceSavesTotal.WithLabelValues("saved").Inc()
	slog.Info("settings saved", "uid", uid, "home_zone", prefs.HomeZone)
	return prefs, nil
}

// Message returns the status line shown to the driver for a Save result.
// ErrNoChanges has no message.
func Message(err error) string {
	switch {
	case err == nil:
		return MessageSaved
	case errors.Is(err, ErrNoChanges):
		return ""
	case errors.Is(err, ErrInvalidMetrics):
		return MessageInvalid
	case errors.Is(err, ErrNotReady):
		return MessageNotConnected
	default:
		return MessageSaveFailed
	}
}
