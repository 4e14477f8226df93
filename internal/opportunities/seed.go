package opportunities

import "github.com/hoanghai1803/driverpro/internal/models"

// seedGigs are the fixed Philadelphia-area delivery opportunities.
var seedGigs = []models.Gig{
	{ID: 1, Name: "Big Box Run", Pickup: "Center City, PA", Dropoff: "South Philly, PA", TimeWindow: "1:15 PM - 2:30 PM", RouteDuration: 25, Pay: 18.50, Demand: models.DemandHigh, TimeSlot: "Afternoon"},
	{ID: 2, Name: "B2B Delivery", Pickup: "University City, PA", Dropoff: "Fishtown, PA", TimeWindow: "9:00 AM - 10:30 AM", RouteDuration: 40, Pay: 28.00, Demand: models.DemandVeryHigh, TimeSlot: "Morning"},
	{ID: 3, Name: "Industrial Supply", Pickup: "King of Prussia, PA", Dropoff: "Cherry Hill, NJ", TimeWindow: "4:00 PM - 6:00 PM", RouteDuration: 60, Pay: 55.00, Demand: models.DemandMedium, TimeSlot: "Evening Rush"},
	{ID: 4, Name: "Small Retail", Pickup: "Old City, PA", Dropoff: "Center City, PA", TimeWindow: "10:30 AM - 11:30 AM", RouteDuration: 15, Pay: 12.00, Demand: models.DemandLow, TimeSlot: "Late Morning"},
	{ID: 5, Name: "Pharmacy Supplies", Pickup: "North Philly, PA", Dropoff: "West Philly, PA", TimeWindow: "7:00 AM - 8:30 AM", RouteDuration: 30, Pay: 22.00, Demand: models.DemandMedium, TimeSlot: "Morning Rush"},
}

// seedAreaDemand is the fixed opportunity density table.
var seedAreaDemand = []models.AreaDemand{
	{Area: "Center City (CC)", Morning: 0.8, Afternoon: 0.6, Evening: 0.9, Notes: "High retail/commercial density"},
	{Area: "King of Prussia (KOP)", Morning: 0.5, Afternoon: 0.9, Evening: 0.7, Notes: "Peak around business closing times"},
	{Area: "South Philly / Pennsport", Morning: 0.9, Afternoon: 0.7, Evening: 0.6, Notes: "High warehouse and distribution center activity"},
	{Area: "University City / West Philly", Morning: 0.6, Afternoon: 0.8, Evening: 0.5, Notes: "Steady throughout the day"},
}

// SeedGigs returns a copy of the seed gig list.
func SeedGigs() []models.Gig {
	out := make([]models.Gig, len(seedGigs))
	copy(out, seedGigs)
	return out
}

// SeedAreaDemand returns a copy of the seed area-demand list.
func SeedAreaDemand() []models.AreaDemand {
	out := make([]models.AreaDemand, len(seedAreaDemand))
	copy(out, seedAreaDemand)
	return out
}
