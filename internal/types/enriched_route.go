package types

type Region string

const (
	RegionEurope       Region = "Europe"
	RegionAsia         Region = "Asia"
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionMiddleEast   Region = "Middle East"
	RegionOceania      Region = "Oceania"
	RegionAfrica       Region = "Africa"
	RegionOther        Region = "Other"
)

type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonFall   Season = "Fall"
)

// RouteGeography holds the fields derived from resolved origin and destination airports.
type RouteGeography struct {
	DistanceMiles float64 `json:"distance_miles"`
	DistanceKm    float64 `json:"distance_km"`
	PricePerMile  float64 `json:"price_per_mile"`
	OriginCity    string  `json:"origin_city"`
	OriginCountry string  `json:"origin_country"`
	DestCity      string  `json:"dest_city"`
	DestCountry   string  `json:"dest_country"`
	TimezoneDiff  int     `json:"timezone_diff"`
	OriginRegion  Region  `json:"origin_region"`
	DestRegion    Region  `json:"dest_region"`
	OriginSeason  Season  `json:"origin_season"`
	DestSeason    Season  `json:"dest_season"`
}

type ClimateNote struct {
	AvgTempC    float64 `json:"avg_temp_c"`
	Description string  `json:"description"`
}

// DestinationRef is the slice of Destination carried on each enriched route.
type DestinationRef struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Country      string      `json:"country"`
	Categories   CategorySet `json:"categories"`
	BudgetPerDay float64     `json:"budget_per_day"`
	Description  string      `json:"description,omitempty"`
	SkiSuitable  bool        `json:"ski_suitable"`
}

// EnrichedRoute is a Route plus derived attributes. Geo and Climate are nil
// when either airport could not be resolved.
type EnrichedRoute struct {
	Route
	Geo         *RouteGeography `json:"geo,omitempty"`
	Climate     *ClimateNote    `json:"climate,omitempty"`
	Destination *DestinationRef `json:"destination_info,omitempty"`
}

func (e EnrichedRoute) Resolved() bool {
	return e.Geo != nil
}
