package types

type StopConstraint string

const (
	StopsAll        StopConstraint = "All"
	StopsDirectOnly StopConstraint = "Direct only"
	StopsOneMax     StopConstraint = "1 stop max"
	StopsTwoPlusOK  StopConstraint = "2+ stops OK"
)

type TravelWindow string

const (
	WindowAllMonths TravelWindow = "All Months"
	WindowNext3     TravelWindow = "Next 3 Months"
	WindowNext6     TravelWindow = "Next 6 Months"
	WindowAfter6    TravelWindow = "After 6 Months"
)

// ScoreScope selects the candidate set a route's value score is relative to.
type ScoreScope string

const (
	ScoreScopeGlobal ScoreScope = "global"
	ScoreScopeRegion ScoreScope = "region"
	ScoreScopeCabin  ScoreScope = "cabin"
)

// SchoolPeriod is a "<calendar>: <period>" label such as "US/Canada: Summer Break".
type SchoolPeriod string

// FilterAll disables a string-valued filter.
const FilterAll = "All"

type TripRequest struct {
	Origin          string         `json:"origin" validate:"required"`
	BudgetPerPerson float64        `json:"budget_per_person" validate:"required,gt=0"`
	Adults          *int           `json:"adults,omitempty" validate:"omitempty,gte=1"`
	Children        int            `json:"children" validate:"gte=0"`
	CabinClass      CabinClass     `json:"cabin_class,omitempty"`
	TripType        string         `json:"trip_type,omitempty"`
	Stops           StopConstraint `json:"stops,omitempty"`
	TravelWindow    TravelWindow   `json:"travel_window,omitempty"`
	OriginSeason    Season         `json:"origin_season,omitempty"`
	DestSeason      Season         `json:"dest_season,omitempty"`
	SchoolPeriod    SchoolPeriod   `json:"school_period,omitempty"`
	ScoreScope      ScoreScope     `json:"score_scope,omitempty"`
}

// AdultCount is the number of adults; an omitted count means one.
func (r TripRequest) AdultCount() int {
	if r.Adults == nil {
		return 1
	}
	return *r.Adults
}

// Travelers is the party size.
func (r TripRequest) Travelers() int {
	return r.AdultCount() + r.Children
}

type MatchResult struct {
	EnrichedRoute
	ValueScore float64 `json:"value_score"`
	Rank       int     `json:"rank"`
}

// TripSuggestion decorates a match with party-level costs.
type TripSuggestion struct {
	MatchResult
	Travelers         int      `json:"travelers"`
	TotalFlightCost   float64  `json:"total_flight_cost"`
	BookBy            Date     `json:"book_by"`
	BookingWindow     string   `json:"booking_window"`
	EstimatedTripCost *float64 `json:"estimated_trip_cost,omitempty"`
}

type TripSearchRequest struct {
	TripRequest
	Nights int `json:"nights,omitempty" validate:"gte=0,lte=90"`
	Limit  int `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type TripSearchResponse struct {
	TotalMatches int              `json:"total_matches"`
	Travelers    int              `json:"travelers"`
	Results      []TripSuggestion `json:"results"`
}

// RouteFilter drives the route explorer. Empty fields do not filter.
type RouteFilter struct {
	Origins      []string     `json:"origins,omitempty"`
	Destinations []string     `json:"destinations,omitempty"`
	CabinClasses []CabinClass `json:"cabin_classes,omitempty"`
	PriceLevels  []string     `json:"price_levels,omitempty"`
	DaysAhead    []int        `json:"days_ahead,omitempty"`
	MinPrice     *float64     `json:"min_price,omitempty"`
	MaxPrice     *float64     `json:"max_price,omitempty"`
	Airlines     []string     `json:"airlines,omitempty"`
	SortBy       RouteSort    `json:"sort_by,omitempty"`
}

type RouteSort string

const (
	SortNone         RouteSort = ""
	SortLowestPrice  RouteSort = "price"
	SortPricePerMile RouteSort = "price_per_mile"
	SortDuration     RouteSort = "duration"
	SortFewestStops  RouteSort = "stops"
)
