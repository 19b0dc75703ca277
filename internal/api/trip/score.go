package trip

import "github.com/FACorreiaa/go-flight-explorer/internal/types"

type priceBounds struct {
	min, max float64
}

// ScoreResults sets ValueScore on each result relative to its candidate set:
// 100 * (1 - (price - min) / max). The cheapest route scores 100 and the most
// expensive scores 100 * min / max.
func ScoreResults(results []types.MatchResult, scope types.ScoreScope) {
	bounds := make(map[string]*priceBounds)
	for _, r := range results {
		k := scopeKey(r.EnrichedRoute, scope)
		b, ok := bounds[k]
		if !ok {
			bounds[k] = &priceBounds{min: r.PriceAvg, max: r.PriceAvg}
			continue
		}
		b.min = min(b.min, r.PriceAvg)
		b.max = max(b.max, r.PriceAvg)
	}

	for i := range results {
		b := bounds[scopeKey(results[i].EnrichedRoute, scope)]
		results[i].ValueScore = valueScore(results[i].PriceAvg, b.min, b.max)
	}
}

func valueScore(price, lo, hi float64) float64 {
	if hi <= 0 {
		return 100
	}
	s := 100 * (1 - (price-lo)/hi)
	return max(0, min(100, s))
}

func scopeKey(r types.EnrichedRoute, scope types.ScoreScope) string {
	switch scope {
	case types.ScoreScopeRegion:
		if r.Geo == nil {
			return ""
		}
		return string(r.Geo.DestRegion)
	case types.ScoreScopeCabin:
		return string(r.CabinClass)
	}
	return ""
}
