package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var _ Source = (*FileSource)(nil)

// FileSource reads the dataset from local files. The format is chosen by extension.
type FileSource struct {
	AirportsPath     string
	DestinationsPath string
	RoutesPath       string
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Airports(_ context.Context) ([]types.Airport, error) {
	return LoadAirportsFile(f.AirportsPath)
}

func (f *FileSource) Destinations(_ context.Context) ([]types.Destination, error) {
	if f.DestinationsPath == "" {
		return nil, nil
	}
	return LoadDestinationsFile(f.DestinationsPath)
}

func (f *FileSource) Routes(_ context.Context) (*types.DatasetMetadata, []types.Route, error) {
	return LoadRoutesFile(f.RoutesPath)
}

type datasetFile struct {
	Metadata types.DatasetMetadata `json:"metadata"`
	Routes   []types.Route         `json:"routes"`
}

type destinationsFile struct {
	Destinations []types.Destination `json:"destinations" yaml:"destinations"`
}

func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// LoadRoutesFile reads a scraped dataset JSON file.
func LoadRoutesFile(path string) (*types.DatasetMetadata, []types.Route, error) {
	if formatOf(path) != "json" {
		return nil, nil, fmt.Errorf("%w: routes must be JSON, got %s", types.ErrUnsupportedFormat, path)
	}
	f, err := openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return DecodeRoutes(f)
}

// DecodeRoutes decodes `{metadata, routes}`. Missing metadata counts are
// derived from the routes.
func DecodeRoutes(r io.Reader) (*types.DatasetMetadata, []types.Route, error) {
	var ds datasetFile
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	for i := range ds.Routes {
		ds.Routes[i].Origin = strings.ToUpper(strings.TrimSpace(ds.Routes[i].Origin))
		ds.Routes[i].Destination = strings.ToUpper(strings.TrimSpace(ds.Routes[i].Destination))
		ds.Routes[i].CabinClass = types.CabinClass(strings.ToLower(string(ds.Routes[i].CabinClass)))
	}
	meta := ds.Metadata
	if meta.TotalRoutes == 0 {
		meta = summarize(ds.Routes, meta.ScrapedAt)
	}
	return &meta, ds.Routes, nil
}

func summarize(routes []types.Route, scrapedAt string) types.DatasetMetadata {
	meta := types.DatasetMetadata{TotalRoutes: len(routes), ScrapedAt: scrapedAt}
	for _, r := range routes {
		switch r.CabinClass {
		case types.CabinEconomy:
			meta.EconomyRoutes++
		case types.CabinBusiness:
			meta.BusinessRoutes++
		}
	}
	return meta
}

// LoadDestinationsFile reads a `{destinations: [...]}` document as JSON or YAML.
func LoadDestinationsFile(path string) ([]types.Destination, error) {
	format := formatOf(path)
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeDestinations(f, format)
}

func DecodeDestinations(r io.Reader, format string) ([]types.Destination, error) {
	var doc destinationsFile
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode destinations: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode destinations: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: destinations format %q", types.ErrUnsupportedFormat, format)
	}
	for i := range doc.Destinations {
		doc.Destinations[i].FoldClimate()
	}
	return doc.Destinations, nil
}

// LoadAirportsFile reads airports from a JSON array or an OpenFlights airports.dat file.
func LoadAirportsFile(path string) ([]types.Airport, error) {
	format := formatOf(path)
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "json":
		var airports []types.Airport
		if err := json.NewDecoder(f).Decode(&airports); err != nil {
			return nil, fmt.Errorf("failed to decode airports: %w", err)
		}
		return airports, nil
	case "dat", "csv":
		return ParseOpenFlights(f)
	}
	return nil, fmt.Errorf("%w: airports format %q", types.ErrUnsupportedFormat, format)
}

const (
	ofName = iota + 1
	ofCity
	ofCountry
	ofIATA
	_ // icao
	ofLatitude
	ofLongitude
	_ // altitude
	ofTimezone
	openFlightsColumns = 14
)

// ParseOpenFlights reads the OpenFlights airports.dat layout. Rows without an
// IATA code are skipped and `\N` is treated as null.
func ParseOpenFlights(r io.Reader) ([]types.Airport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []types.Airport
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("airports.dat line %d: %w", line, err)
		}
		if len(rec) < openFlightsColumns {
			continue
		}
		code := nullable(rec[ofIATA])
		if code == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(rec[ofLatitude], 64)
		lon, errLon := strconv.ParseFloat(rec[ofLongitude], 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("airports.dat line %d: invalid coordinates for %s", line, code)
		}
		a := types.Airport{
			Code:      strings.ToUpper(code),
			Name:      nullable(rec[ofName]),
			City:      nullable(rec[ofCity]),
			Country:   nullable(rec[ofCountry]),
			Latitude:  lat,
			Longitude: lon,
		}
		if tz, err := strconv.ParseFloat(nullable(rec[ofTimezone]), 64); err == nil {
			a.UTCOffset = &tz
		}
		out = append(out, a)
	}
	return out, nil
}

func nullable(s string) string {
	s = strings.TrimSpace(s)
	if s == `\N` {
		return ""
	}
	return s
}
