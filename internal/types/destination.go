package types

import (
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategorySet holds lower-cased destination tags such as "beach" or "ski".
type CategorySet map[string]struct{}

func NewCategorySet(tags ...string) CategorySet {
	s := make(CategorySet, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

func (s CategorySet) Has(tag string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// List returns the tags in sorted order.
func (s CategorySet) List() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewCategorySet(tags...)
	return nil
}

func (s *CategorySet) UnmarshalYAML(value *yaml.Node) error {
	var tags []string
	if err := value.Decode(&tags); err != nil {
		return err
	}
	*s = NewCategorySet(tags...)
	return nil
}

type BudgetPerDay struct {
	Budget   float64 `json:"budget" yaml:"budget"`
	Moderate float64 `json:"moderate" yaml:"moderate"`
	Luxury   float64 `json:"luxury" yaml:"luxury"`
}

// ClimateMonth is one row of a destination's monthly climate table, in Celsius.
type ClimateMonth struct {
	Avg         float64 `json:"avg" yaml:"avg"`
	Min         float64 `json:"min" yaml:"min"`
	Max         float64 `json:"max" yaml:"max"`
	Description string  `json:"desc" yaml:"desc"`
}

type Destination struct {
	ID           string                  `json:"id" yaml:"id"`
	Name         string                  `json:"name" yaml:"name"`
	Country      string                  `json:"country" yaml:"country"`
	Airports     []string                `json:"airports" yaml:"airports"`
	Categories   CategorySet             `json:"categories" yaml:"categories"`
	BudgetPerDay BudgetPerDay            `json:"budget_per_day" yaml:"budget_per_day"`
	Description  string                  `json:"description,omitempty" yaml:"description"`
	ClimateType  string                  `json:"climate_type,omitempty" yaml:"climate_type"`
	SkiSuitable  bool                    `json:"ski_suitable" yaml:"ski_suitable"`
	MonthlyTemps map[string]ClimateMonth `json:"monthly_temps,omitempty" yaml:"monthly_temps"`

	// Climate is the nested layout written by the climate backfill tooling.
	// FoldClimate moves it into the fields above.
	Climate *DestinationClimate `json:"climate,omitempty" yaml:"climate,omitempty"`
}

type DestinationClimate struct {
	ClimateType  string                  `json:"climate_type" yaml:"climate_type"`
	SkiSuitable  bool                    `json:"ski_suitable" yaml:"ski_suitable"`
	MonthlyTemps map[string]ClimateMonth `json:"monthly_temps" yaml:"monthly_temps"`
}

// FoldClimate merges a nested climate block into the top-level fields and
// clears it. Top-level values win where both are present.
func (d *Destination) FoldClimate() {
	c := d.Climate
	if c == nil {
		return
	}
	d.Climate = nil
	if d.ClimateType == "" {
		d.ClimateType = c.ClimateType
	}
	d.SkiSuitable = d.SkiSuitable || c.SkiSuitable
	if len(c.MonthlyTemps) == 0 {
		return
	}
	if d.MonthlyTemps == nil {
		d.MonthlyTemps = make(map[string]ClimateMonth, len(c.MonthlyTemps))
	}
	for month, cm := range c.MonthlyTemps {
		if _, ok := d.MonthlyTemps[month]; !ok {
			d.MonthlyTemps[month] = cm
		}
	}
}

// DestinationIndex maps an airport code to the destination it serves.
type DestinationIndex map[string]*Destination

// IndexDestinations builds the airport-code index. The first destination
// listing an airport keeps it.
func IndexDestinations(destinations []Destination) DestinationIndex {
	idx := make(DestinationIndex)
	for i := range destinations {
		d := &destinations[i]
		for _, code := range d.Airports {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if _, exists := idx[code]; !exists {
				idx[code] = d
			}
		}
	}
	return idx
}
