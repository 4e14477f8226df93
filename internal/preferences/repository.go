// Package preferences stores the driver's personalization fields as a
// per-user document in the document store.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/storage"
)

// Document field names.
const (
	fieldHomeZone    = "homeZone"
	fieldAvgPay      = "avgPay"
	fieldAvgTime     = "avgTime"
	fieldLastUpdated = "lastUpdated"
)

// isoMillis matches the ISO-8601 form browsers produce, e.g.
// 2025-03-01T14:05:09.123Z.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// DocumentPath returns the path of the preference document for uid.
func DocumentPath(appID, uid string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/driver_data/config", appID, uid)
}

// Repository reads and writes preference documents for one application id.
type Repository struct {
	docs  storage.DocumentStore
	appID string
}

// NewRepository creates a Repository over the given document store.
func NewRepository(docs storage.DocumentStore, appID string) *Repository {
	return &Repository{docs: docs, appID: appID}
}

// Load returns the stored preferences for uid. When no document exists it
// returns the defaults and found=false. Missing, empty, non-positive or
// out-of-range fields fall back to their defaults individually.
func (r *Repository) Load(ctx context.Context, uid string) (prefs models.UserPreferences, found bool, err error) {
	prefs = models.DefaultPreferences()

	doc, err := r.docs.GetDocument(ctx, DocumentPath(r.appID, uid))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return prefs, false, nil
		}
		return prefs, false, fmt.Errorf("loading preferences for %q: %w", uid, err)
	}

	if v, ok := doc[fieldHomeZone].(string); ok && v != "" {
		prefs.HomeZone = v
	}
	if v, ok := number(doc[fieldAvgPay]); ok && v > 0 && v <= models.MaxAvgPay {
		prefs.AvgPay = v
	}
	if v, ok := number(doc[fieldAvgTime]); ok && v >= 1 && v <= models.MaxAvgTime {
		prefs.AvgTime = int(v)
	}
	return prefs, true, nil
}

// Save merges the three preference fields plus a lastUpdated timestamp into
// the user's document. Other fields in the document are preserved.
func (r *Repository) Save(ctx context.Context, uid string, prefs models.UserPreferences, at time.Time) error {
	doc := models.PreferenceDocument{
		HomeZone:    prefs.HomeZone,
		AvgPay:      prefs.AvgPay,
		AvgTime:     prefs.AvgTime,
		LastUpdated: at,
	}

	if err := r.docs.MergeDocument(ctx, DocumentPath(r.appID, uid), toFields(doc)); err != nil {
		return fmt.Errorf("saving preferences for %q: %w", uid, err)
	}
	return nil
}

func toFields(doc models.PreferenceDocument) map[string]any {
	return map[string]any{
		fieldHomeZone:    doc.HomeZone,
		fieldAvgPay:      doc.AvgPay,
		fieldAvgTime:     doc.AvgTime,
		fieldLastUpdated: doc.LastUpdated.UTC().Format(isoMillis),
	}
}

// number converts the numeric types a document field can decode into.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
