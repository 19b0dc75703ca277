package types

import "strings"

type CabinClass string

const (
	CabinEconomy  CabinClass = "economy"
	CabinBusiness CabinClass = "business"
	CabinFirst    CabinClass = "first"
)

// SampleFlight is one concrete itinerary observed for a route.
type SampleFlight struct {
	Duration string  `json:"duration"`
	Stops    int     `json:"stops"`
	Price    float64 `json:"price"`
	Airline  string  `json:"airline"`
}

// Route is one scraped price summary for an origin/destination pair on a travel date.
type Route struct {
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	CabinClass   CabinClass    `json:"cabin_class"`
	TravelDate   Date          `json:"travel_date"`
	DaysAhead    int           `json:"days_ahead"`
	PriceMin     float64       `json:"price_min"`
	PriceAvg     float64       `json:"price_avg"`
	PriceMax     float64       `json:"price_max"`
	PriceLevel   string        `json:"price_level"`
	Airlines     []string      `json:"airlines"`
	SampleFlight *SampleFlight `json:"sample_flight,omitempty"`
}

// AirlineNames splits the comma-joined airline groupings into unique carrier names.
func (r Route) AirlineNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, group := range r.Airlines {
		for _, name := range strings.Split(group, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// BookBy is the date the route's price was observed relative to travel.
func (r Route) BookBy() Date {
	return r.TravelDate.AddDays(-r.DaysAhead)
}

type DatasetMetadata struct {
	TotalRoutes    int    `json:"total_routes" yaml:"total_routes"`
	EconomyRoutes  int    `json:"economy_routes" yaml:"economy_routes"`
	BusinessRoutes int    `json:"business_routes" yaml:"business_routes"`
	ScrapedAt      string `json:"scraped_at" yaml:"scraped_at"`
}
