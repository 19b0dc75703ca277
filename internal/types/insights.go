package types

type RegionStats struct {
	Region          Region  `json:"region"`
	Routes          int     `json:"routes"`
	MinPrice        float64 `json:"min_price"`
	AvgPrice        float64 `json:"avg_price"`
	AvgPricePerMile float64 `json:"avg_price_per_mile"`
}

type BookingLeadStats struct {
	DaysAhead int     `json:"days_ahead"`
	Routes    int     `json:"routes"`
	AvgPrice  float64 `json:"avg_price"`
	Advice    string  `json:"advice"`
}

type Insights struct {
	Routes           int                `json:"routes"`
	Resolved         int                `json:"resolved"`
	Regions          []RegionStats      `json:"regions"`
	DistanceBuckets  map[string]int     `json:"distance_buckets"`
	JetLagBuckets    map[string]int     `json:"jet_lag_buckets"`
	BookingLeadTimes []BookingLeadStats `json:"booking_lead_times"`
	BestDaysAhead    *int               `json:"best_days_ahead,omitempty"`
	CheapestRoute    *EnrichedRoute     `json:"cheapest_route,omitempty"`
	BestValuePerMile *EnrichedRoute     `json:"best_value_per_mile,omitempty"`
}

// MonthlyClimate is a computed climate summary for a coordinate and month.
type MonthlyClimate struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Month       int     `json:"month"`
	Avg         float64 `json:"avg"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"desc"`
	ClimateType string  `json:"climate_type"`
	SkiSuitable bool    `json:"ski_suitable"`
	Source      string  `json:"source"`
}
