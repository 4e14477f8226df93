package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/driverpro/internal/places"
)

// GetSuggestions handles GET /api/suggestions?q=. It returns home-zone
// labels matching the partial input.
func GetSuggestions(suggester places.Suggester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		suggestions, err := suggester.Suggest(r.Context(), q)
		if err != nil {
			slog.Error("failed to get suggestions", "query", q, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get suggestions")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"query":       q,
			"suggestions": suggestions,
		})
	}
}
