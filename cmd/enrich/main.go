// Command enrich derives geographic, seasonal and climate fields for a route
// dataset offline and writes the enriched routes as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"

	appLogger "github.com/FACorreiaa/go-flight-explorer/app/logger"
	"github.com/FACorreiaa/go-flight-explorer/config"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/dataset"
	"github.com/FACorreiaa/go-flight-explorer/internal/container"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

type options struct {
	airports     string
	routes       string
	destinations string
	out          string
	workers      int
	importPG     bool
	quiet        bool
}

// importer is the write side of dataset.Repository used by -import-postgres.
type importer interface {
	ReplaceAirports(ctx context.Context, airports []types.Airport) error
	ReplaceDestinations(ctx context.Context, destinations []types.Destination) error
	ImportRoutes(ctx context.Context, meta types.DatasetMetadata, routes []types.Route) (uuid.UUID, error)
}

type enricher struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	// openImporter returns the import target and a release func.
	openImporter func(ctx context.Context, logger *slog.Logger) (importer, func(), error)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.airports, "airports", "data/airports.dat", "airport file (OpenFlights .dat, CSV or JSON)")
	fs.StringVar(&opts.routes, "routes", "data/flight_data.json", "scraped route dataset (JSON)")
	fs.StringVar(&opts.destinations, "destinations", "data/destinations.json", "destination metadata (YAML or JSON)")
	fs.StringVar(&opts.out, "out", "-", "output file, - for stdout")
	fs.IntVar(&opts.workers, "workers", 4, "enrichment workers")
	fs.BoolVar(&opts.importPG, "import-postgres", false, "also import the raw dataset into the configured Postgres database")
	fs.BoolVar(&opts.quiet, "quiet", false, "suppress informational logs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.workers < 1 {
		return opts, fmt.Errorf("-workers must be at least 1, got %d", opts.workers)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	var logOut io.Writer = os.Stderr
	if opts.quiet {
		logOut = io.Discard
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	e := &enricher{
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		logger:       appLogger.New("development", logOut),
		openImporter: openPostgres,
	}
	if err := e.run(ctx, opts); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "enrich failed: %v\n", err)
		os.Exit(1)
	}
}

func (e *enricher) run(ctx context.Context, opts options) error {
	source := &dataset.FileSource{
		AirportsPath:     opts.airports,
		DestinationsPath: opts.destinations,
		RoutesPath:       opts.routes,
	}
	service := dataset.NewServiceImpl(source, nil, opts.workers, nil, e.logger)
	info, err := service.Reload(ctx)
	if err != nil {
		return err
	}
	snap, err := service.Snapshot()
	if err != nil {
		return err
	}

	if err := e.writeRoutes(opts.out, snap); err != nil {
		return err
	}

	if opts.importPG {
		if err := e.importDataset(ctx, source); err != nil {
			return err
		}
	}

	summary := color.New(color.FgGreen, color.Bold)
	if info.Degraded > 0 {
		summary = color.New(color.FgYellow, color.Bold)
	}
	summary.Fprintf(e.stderr, "Enriched %d/%d routes", info.Resolved, len(snap.Routes))
	fmt.Fprintf(e.stderr, " (%d airports, %d destinations)\n", info.Airports, info.Destinations)
	if info.Degraded > 0 {
		color.New(color.FgYellow).Fprintf(e.stderr, "%d routes reference unknown airports\n", info.Degraded)
	}
	return nil
}

func (e *enricher) writeRoutes(path string, snap *dataset.Snapshot) error {
	w := e.stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	payload := struct {
		Metadata types.DatasetInfo     `json:"metadata"`
		Routes   []types.EnrichedRoute `json:"routes"`
	}{snap.Info, snap.Routes}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// importDataset copies the raw file dataset into Postgres so the API can run
// with dataset.source=postgres.
func (e *enricher) importDataset(ctx context.Context, source *dataset.FileSource) error {
	target, release, err := e.openImporter(ctx, e.logger)
	if err != nil {
		return err
	}
	defer release()

	airports, err := source.Airports(ctx)
	if err != nil {
		return err
	}
	destinations, err := source.Destinations(ctx)
	if err != nil {
		return err
	}
	meta, routes, err := source.Routes(ctx)
	if err != nil {
		return err
	}

	if err := target.ReplaceAirports(ctx, airports); err != nil {
		return fmt.Errorf("import airports: %w", err)
	}
	if err := target.ReplaceDestinations(ctx, destinations); err != nil {
		return fmt.Errorf("import destinations: %w", err)
	}
	id, err := target.ImportRoutes(ctx, *meta, routes)
	if err != nil {
		return fmt.Errorf("import routes: %w", err)
	}
	color.New(color.FgCyan).Fprintf(e.stderr, "Imported %d routes into Postgres (import %s)\n", len(routes), id)
	return nil
}

func openPostgres(ctx context.Context, logger *slog.Logger) (importer, func(), error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := container.OpenPostgres(ctx, cfg.Repositories.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	return dataset.NewPostgresRepository(pool, nil, logger), pool.Close, nil
}
