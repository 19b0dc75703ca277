package geo

import "github.com/FACorreiaa/go-flight-explorer/internal/types"

type regionCountries struct {
	region    types.Region
	countries []string
}

// Order matters: the first region listing a country wins.
var regionTable = []regionCountries{
	{types.RegionEurope, []string{"United Kingdom", "France", "Spain", "Italy", "Greece", "Iceland", "Netherlands", "Germany", "Turkey"}},
	{types.RegionAsia, []string{"Japan", "Thailand", "Singapore", "Hong Kong", "China", "Indonesia", "Maldives", "India", "South Korea", "Vietnam"}},
	{types.RegionNorthAmerica, []string{"United States", "Canada", "Mexico"}},
	{types.RegionSouthAmerica, []string{"Brazil", "Argentina", "Chile", "Peru", "Colombia"}},
	{types.RegionMiddleEast, []string{"United Arab Emirates", "Qatar", "Saudi Arabia", "Israel"}},
	{types.RegionOceania, []string{"Australia", "New Zealand", "Fiji"}},
	{types.RegionAfrica, []string{"South Africa", "Egypt", "Morocco", "Kenya"}},
}

var countryRegion = buildCountryRegion()

func buildCountryRegion() map[string]types.Region {
	m := make(map[string]types.Region)
	for _, rc := range regionTable {
		for _, c := range rc.countries {
			if _, exists := m[c]; !exists {
				m[c] = rc.region
			}
		}
	}
	return m
}

// ClassifyRegion maps a country name, matched exactly, to its region or Other.
func ClassifyRegion(country string) types.Region {
	if r, ok := countryRegion[country]; ok {
		return r
	}
	return types.RegionOther
}

// Regions lists every region tag including Other.
func Regions() []types.Region {
	out := make([]types.Region, 0, len(regionTable)+1)
	for _, rc := range regionTable {
		out = append(out, rc.region)
	}
	return append(out, types.RegionOther)
}
