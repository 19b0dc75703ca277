package trip

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/go-flight-explorer/internal/season"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

const (
	nearWindow = 90 * 24 * time.Hour
	farWindow  = 180 * 24 * time.Hour
)

// query is a validated TripRequest with labels resolved to their canonical form.
type query struct {
	origin       string
	originLower  string
	originIsCode bool
	budget       float64
	cabin        types.CabinClass
	tripType     string
	stops        types.StopConstraint
	window       types.TravelWindow
	originSeason types.Season
	destSeason   types.Season
	school       types.SchoolPeriod
	scope        types.ScoreScope
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{types.ErrInvalidRequest}, args...)...)
}

// NormalizeRequest validates req. Origin and a positive budget are required;
// every other field is optional and "All" disables it.
func NormalizeRequest(req types.TripRequest) (types.TripRequest, error) {
	q, err := newQuery(req)
	if err != nil {
		return types.TripRequest{}, err
	}
	out := req
	out.Origin = q.origin
	out.CabinClass = q.cabin
	out.TripType = q.tripType
	out.Stops = q.stops
	out.TravelWindow = q.window
	out.OriginSeason = q.originSeason
	out.DestSeason = q.destSeason
	out.SchoolPeriod = q.school
	out.ScoreScope = q.scope
	return out, nil
}

func newQuery(req types.TripRequest) (*query, error) {
	q := &query{origin: strings.TrimSpace(req.Origin)}
	if q.origin == "" {
		return nil, invalid("origin is required")
	}
	q.originLower = strings.ToLower(q.origin)

	if math.IsNaN(req.BudgetPerPerson) || req.BudgetPerPerson <= 0 {
		return nil, invalid("budget_per_person is required")
	}
	q.budget = req.BudgetPerPerson

	if req.Adults != nil && *req.Adults < 1 {
		return nil, invalid("adults must be at least 1")
	}
	if req.Children < 0 {
		return nil, invalid("children cannot be negative")
	}

	switch c := types.CabinClass(strings.ToLower(strings.TrimSpace(string(req.CabinClass)))); c {
	case "", "all":
	case types.CabinEconomy, types.CabinBusiness, types.CabinFirst:
		q.cabin = c
	default:
		return nil, invalid("unknown cabin class %q", req.CabinClass)
	}

	if tt := strings.ToLower(strings.TrimSpace(req.TripType)); tt != "" && tt != "all" {
		q.tripType = tt
	}

	var err error
	if q.stops, err = parseStops(req.Stops); err != nil {
		return nil, err
	}
	if q.window, err = parseWindow(req.TravelWindow); err != nil {
		return nil, err
	}
	if q.originSeason, err = season.ParseSeason(string(req.OriginSeason)); err != nil {
		return nil, err
	}
	if q.destSeason, err = season.ParseSeason(string(req.DestSeason)); err != nil {
		return nil, err
	}
	if q.school, err = season.ParseSchoolPeriod(string(req.SchoolPeriod)); err != nil {
		return nil, err
	}

	switch s := types.ScoreScope(strings.ToLower(string(req.ScoreScope))); s {
	case "":
		q.scope = types.ScoreScopeGlobal
	case types.ScoreScopeGlobal, types.ScoreScopeRegion, types.ScoreScopeCabin:
		q.scope = s
	default:
		return nil, invalid("unknown score scope %q", req.ScoreScope)
	}
	return q, nil
}

func parseStops(s types.StopConstraint) (types.StopConstraint, error) {
	label := strings.TrimSpace(string(s))
	if label == "" {
		return types.StopsAll, nil
	}
	for _, c := range []types.StopConstraint{types.StopsAll, types.StopsDirectOnly, types.StopsOneMax, types.StopsTwoPlusOK} {
		if strings.EqualFold(label, string(c)) {
			return c, nil
		}
	}
	return "", invalid("unknown stop constraint %q", s)
}

func parseWindow(w types.TravelWindow) (types.TravelWindow, error) {
	label := strings.TrimSpace(string(w))
	if label == "" || strings.EqualFold(label, types.FilterAll) {
		return types.WindowAllMonths, nil
	}
	for _, c := range []types.TravelWindow{types.WindowAllMonths, types.WindowNext3, types.WindowNext6, types.WindowAfter6} {
		if strings.EqualFold(label, string(c)) {
			return c, nil
		}
	}
	return "", invalid("unknown travel window %q", w)
}

func (q *query) accepts(r types.EnrichedRoute, now time.Time) bool {
	return q.matchesOrigin(r) &&
		(q.cabin == "" || r.CabinClass == q.cabin) &&
		r.PriceAvg <= q.budget &&
		q.matchesTripType(r) &&
		q.matchesStops(r) &&
		q.matchesWindow(r, now) &&
		q.matchesSeasons(r) &&
		(q.school == "" || season.IsWithinSchoolPeriod(r.TravelDate.Time, q.school))
}

// resolveOrigin records whether the requested origin is an airport code
// present in routes. Only when it is not does the city fragment apply.
func (q *query) resolveOrigin(routes []types.EnrichedRoute) {
	for _, r := range routes {
		if strings.EqualFold(r.Origin, q.origin) {
			q.originIsCode = true
			return
		}
	}
}

// matchesOrigin compares airport codes, or a case-insensitive fragment of the
// resolved origin city when no route departs from a code equal to the request.
func (q *query) matchesOrigin(r types.EnrichedRoute) bool {
	if strings.EqualFold(r.Origin, q.origin) {
		return true
	}
	return !q.originIsCode && r.Geo != nil && r.Geo.OriginCity != "" &&
		strings.Contains(strings.ToLower(r.Geo.OriginCity), q.originLower)
}

func (q *query) matchesTripType(r types.EnrichedRoute) bool {
	if q.tripType == "" {
		return true
	}
	return r.Destination != nil && r.Destination.Categories.Has(q.tripType)
}

func (q *query) matchesStops(r types.EnrichedRoute) bool {
	if q.stops == types.StopsAll {
		return true
	}
	if r.SampleFlight == nil {
		return false
	}
	switch q.stops {
	case types.StopsDirectOnly:
		return r.SampleFlight.Stops == 0
	case types.StopsOneMax:
		return r.SampleFlight.Stops <= 1
	}
	return true
}

func (q *query) matchesWindow(r types.EnrichedRoute, now time.Time) bool {
	travel := r.TravelDate.Time
	switch q.window {
	case types.WindowNext3:
		return !travel.After(now.Add(nearWindow))
	case types.WindowNext6:
		return !travel.After(now.Add(farWindow))
	case types.WindowAfter6:
		return travel.After(now.Add(farWindow))
	}
	return true
}

func (q *query) matchesSeasons(r types.EnrichedRoute) bool {
	if q.originSeason == "" && q.destSeason == "" {
		return true
	}
	if r.Geo == nil {
		return false
	}
	return (q.originSeason == "" || r.Geo.OriginSeason == q.originSeason) &&
		(q.destSeason == "" || r.Geo.DestSeason == q.destSeason)
}

// Match returns the routes satisfying every predicate of req, best value first.
// An empty result is not an error. now anchors the travel window.
func Match(routes []types.EnrichedRoute, req types.TripRequest, now time.Time) ([]types.MatchResult, error) {
	q, err := newQuery(req)
	if err != nil {
		return nil, err
	}
	q.resolveOrigin(routes)

	results := make([]types.MatchResult, 0)
	for _, r := range routes {
		if q.accepts(r, now) {
			results = append(results, types.MatchResult{EnrichedRoute: r})
		}
	}

	ScoreResults(results, q.scope)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ValueScore != b.ValueScore {
			return a.ValueScore > b.ValueScore
		}
		if a.PriceAvg != b.PriceAvg {
			return a.PriceAvg < b.PriceAvg
		}
		return a.TravelDate.Before(b.TravelDate.Time)
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}
