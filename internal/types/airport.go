package types

// Airport is reference data keyed by its IATA code.
type Airport struct {
	Code      string   `json:"code" yaml:"code"`
	Name      string   `json:"name,omitempty" yaml:"name"`
	City      string   `json:"city" yaml:"city"`
	Country   string   `json:"country" yaml:"country"`
	Latitude  float64  `json:"latitude" yaml:"latitude"`
	Longitude float64  `json:"longitude" yaml:"longitude"`
	UTCOffset *float64 `json:"utc_offset,omitempty" yaml:"utc_offset"`
}

type AirportIndex map[string]Airport

func IndexAirports(airports []Airport) AirportIndex {
	idx := make(AirportIndex, len(airports))
	for _, a := range airports {
		if a.Code == "" {
			continue
		}
		if _, exists := idx[a.Code]; exists {
			continue
		}
		idx[a.Code] = a
	}
	return idx
}
