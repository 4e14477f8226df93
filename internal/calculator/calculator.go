// Package calculator derives the display and sort values shown on the
// dashboard from raw gig records and the driver's own averages.
package calculator

import (
	"sort"
	"strings"

	"github.com/hoanghai1803/driverpro/internal/models"
)

const (
	// CompletedGigs is the assumed number of gigs already finished today.
	CompletedGigs = 2

	// CompletedGigPay is the mock value of the already-completed gigs added
	// to the simulated actual pay.
	CompletedGigPay = 55.00
)

// PayPerMinute returns pay divided by route duration. A non-positive
// duration yields 0.
func PayPerMinute(g models.Gig) float64 {
	if g.RouteDuration <= 0 {
		return 0
	}
	return g.Pay / float64(g.RouteDuration)
}

// InHomeZone reports whether label contains the home zone substring.
func InHomeZone(label, homeZone string) bool {
	return strings.Contains(label, homeZone)
}

// RankGigs returns the gigs with their derived values, sorted descending by
// home-zone priority first and pay per minute second. The input slice is
// not modified.
func RankGigs(gigs []models.Gig, homeZone string) []models.RankedGig {
	ranked := make([]models.RankedGig, 0, len(gigs))
	for _, g := range gigs {
		priority := 0
		if InHomeZone(g.Pickup, homeZone) {
			priority = 1
		}
		ranked = append(ranked, models.RankedGig{
			Gig:          g,
			Priority:     priority,
			PayPerMinute: PayPerMinute(g),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return ranked[i].PayPerMinute > ranked[j].PayPerMinute
	})
	return ranked
}

// Projection is the personalized daily earnings estimate.
type Projection struct {
	Gigs        int     `json:"gigs"`
	Pay         float64 `json:"pay"`
	TimeMinutes float64 `json:"time_minutes"`
	HourlyRate  float64 `json:"hourly_rate"`
}

// Project estimates a day of work: the available gigs plus CompletedGigs,
// each paying avgPay and taking avgTime minutes.
func Project(available int, avgPay float64, avgTime int) Projection {
	count := available + CompletedGigs
	p := Projection{
		Gigs:        count,
		Pay:         float64(count) * avgPay,
		TimeMinutes: float64(count) * float64(avgTime),
	}
	if hours := p.TimeMinutes / 60; hours > 0 {
		p.HourlyRate = p.Pay / hours
	}
	return p
}

// SimulatedActualPay sums the pay of the given gigs plus CompletedGigPay.
// It does not depend on the driver's averages.
func SimulatedActualPay(gigs []models.Gig) float64 {
	total := CompletedGigPay
	for _, g := range gigs {
		total += g.Pay
	}
	return total
}

// IntensityLevel maps a demand score in [0, 1] to its display label.
func IntensityLevel(v float64) string {
	switch {
	case v >= 0.8:
		return "Very High"
	case v >= 0.7:
		return "High"
	case v >= 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

// HighlightAreas flags the rows whose area contains the home zone and
// attaches the intensity labels. Input order is preserved.
func HighlightAreas(areas []models.AreaDemand, homeZone string) []models.AreaDemandRow {
	rows := make([]models.AreaDemandRow, 0, len(areas))
	for _, a := range areas {
		rows = append(rows, models.AreaDemandRow{
			AreaDemand:     a,
			IsHomeZone:     InHomeZone(a.Area, homeZone),
			MorningLevel:   IntensityLevel(a.Morning),
			AfternoonLevel: IntensityLevel(a.Afternoon),
			EveningLevel:   IntensityLevel(a.Evening),
		})
	}
	return rows
}
