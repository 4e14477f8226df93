package models

// DemandTier is a coarse label for how desirable a gig is.
type DemandTier string

const (
	DemandLow      DemandTier = "low"
	DemandMedium   DemandTier = "medium"
	DemandHigh     DemandTier = "high"
	DemandVeryHigh DemandTier = "very-high"
)

// Valid reports whether t is one of the known demand tiers.
func (t DemandTier) Valid() bool {
	switch t {
	case DemandLow, DemandMedium, DemandHigh, DemandVeryHigh:
		return true
	}
	return false
}

// Gig is a single simulated delivery opportunity.
type Gig struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Pickup        string     `json:"pickup"`
	Dropoff       string     `json:"dropoff"`
	TimeWindow    string     `json:"time_window"`
	RouteDuration int        `json:"route_duration"` // minutes
	Pay           float64    `json:"pay"`
	Demand        DemandTier `json:"demand"`
	TimeSlot      string     `json:"time_slot"`
}

// RankedGig is a Gig plus the values derived from it for one render pass.
type RankedGig struct {
	Gig
	Priority     int     `json:"priority"`
	PayPerMinute float64 `json:"pay_per_minute"`
}

// AreaDemand holds the opportunity density scores for one area. Scores are
// in [0, 1].
type AreaDemand struct {
	Area      string  `json:"area"`
	Morning   float64 `json:"morning"`
	Afternoon float64 `json:"afternoon"`
	Evening   float64 `json:"evening"`
	Notes     string  `json:"notes"`
}

// AreaDemandRow is an AreaDemand prepared for the heatmap table.
type AreaDemandRow struct {
	AreaDemand
	IsHomeZone     bool   `json:"is_home_zone"`
	MorningLevel   string `json:"morning_level"`
	AfternoonLevel string `json:"afternoon_level"`
	EveningLevel   string `json:"evening_level"`
}
