package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	database "github.com/FACorreiaa/go-flight-explorer/app/db"
	"github.com/FACorreiaa/go-flight-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-flight-explorer/config"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/agent"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/climate"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/dataset"
	generativeAI "github.com/FACorreiaa/go-flight-explorer/internal/api/generative_ai"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/insights"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/trip"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	DatasetService *dataset.ServiceImpl

	DatasetHandler  *dataset.HandlerImpl
	TripHandler     *trip.HandlerImpl
	InsightsHandler *insights.HandlerImpl
	ClimateHandler  *climate.HandlerImpl
	AgentHandler    *agent.HandlerImpl
}

// NewContainer wires every service from cfg. Metrics must already be initialized.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	appMetrics := metrics.Get()

	climateClient := climate.NewClient(cfg.Climate.BaseURL, cfg.Climate.Timeout)
	climateService := climate.NewServiceImpl(climateClient, cfg.Climate.CacheTTL, appMetrics, logger)

	source, err := c.datasetSource(ctx, appMetrics)
	if err != nil {
		c.Close()
		return nil, err
	}
	var lookup dataset.ClimateLookup
	if cfg.Dataset.ClimateBackfill {
		lookup = climateService
	}
	c.DatasetService = dataset.NewServiceImpl(source, lookup, cfg.Dataset.Workers, appMetrics, logger)

	tripService := trip.NewServiceImpl(c.DatasetService, nil, appMetrics, logger)
	insightsService := insights.NewServiceImpl(c.DatasetService, logger)

	store, err := c.sessionStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	agentService := agent.NewServiceImpl(c.extractor(ctx), store, tripService, appMetrics, logger)

	c.DatasetHandler = dataset.NewHandlerImpl(c.DatasetService, logger)
	c.TripHandler = trip.NewHandlerImpl(tripService, logger)
	c.InsightsHandler = insights.NewHandlerImpl(insightsService, logger)
	c.ClimateHandler = climate.NewHandlerImpl(climateService, logger)
	c.AgentHandler = agent.NewHandlerImpl(agentService, logger)
	return c, nil
}

func (c *Container) datasetSource(ctx context.Context, appMetrics *metrics.AppMetrics) (dataset.Source, error) {
	cfg := c.Config
	if cfg.Dataset.Source != "postgres" {
		return &dataset.FileSource{
			AirportsPath:     cfg.Dataset.AirportsPath,
			DestinationsPath: cfg.Dataset.DestinationsPath,
			RoutesPath:       cfg.Dataset.RoutesPath,
		}, nil
	}

	pool, err := OpenPostgres(ctx, cfg.Repositories.Postgres, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Pool = pool
	return dataset.NewPostgresRepository(pool, appMetrics, c.Logger), nil
}

// OpenPostgres migrates the schema and returns a ready pool.
func OpenPostgres(ctx context.Context, pg config.PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbConfig, err := database.NewDatabaseConfig(pg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database config: %w", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, err
	}
	pool, err := database.Init(ctx, dbConfig, logger)
	if err != nil {
		return nil, err
	}
	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, fmt.Errorf("database not ready")
	}
	return pool, nil
}

func (c *Container) sessionStore(ctx context.Context) (agent.SessionStore, error) {
	cfg := c.Config
	if cfg.Agent.SessionStore != "redis" {
		return agent.NewMemoryStore(cfg.Agent.SessionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Repositories.Redis.Addr,
		Password: cfg.Repositories.Redis.Password,
		DB:       cfg.Repositories.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	c.Redis = client
	c.Logger.InfoContext(ctx, "Agent sessions stored in redis", slog.String("addr", cfg.Repositories.Redis.Addr))
	return agent.NewRedisStore(client, cfg.Agent.SessionTTL), nil
}

// extractor prefers Gemini when configured and falls back to keywords when
// the client cannot be created.
func (c *Container) extractor(ctx context.Context) agent.Extractor {
	cfg := c.Config.Agent
	if cfg.Provider != "gemini" {
		return agent.NewKeywordExtractor()
	}
	client, err := generativeAI.NewAIClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		c.Logger.WarnContext(ctx, "Gemini unavailable, using keyword extractor", slog.Any("error", err))
		return agent.NewKeywordExtractor()
	}
	return agent.NewGeminiExtractor(client, cfg.Temperature, cfg.MaxTokens, c.Logger)
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis client", slog.Any("error", err))
		}
	}
}
