package models

import "time"

// Default preference values used when no stored document exists.
const (
	DefaultHomeZone = "Center City"
	DefaultAvgPay   = 25.00
	DefaultAvgTime  = 40
)

// Upper bounds for the per-gig averages. Anything larger is a typo, and
// the daily projection multiplies these values.
const (
	MaxAvgPay  = 1000.00
	MaxAvgTime = 24 * 60
)

// UserPreferences are the three fields a driver can personalize.
type UserPreferences struct {
	HomeZone string  `json:"home_zone"`
	AvgPay   float64 `json:"avg_pay"`
	AvgTime  int     `json:"avg_time"` // minutes per gig
}

// DefaultPreferences returns the canonical fallback preferences.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		HomeZone: DefaultHomeZone,
		AvgPay:   DefaultAvgPay,
		AvgTime:  DefaultAvgTime,
	}
}

// PreferenceDocument is the stored shape of a user's preferences.
type PreferenceDocument struct {
	HomeZone    string    `json:"homeZone"`
	AvgPay      float64   `json:"avgPay"`
	AvgTime     int       `json:"avgTime"`
	LastUpdated time.Time `json:"lastUpdated"`
}
