package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-flight-explorer/internal/api/agent"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/climate"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/dataset"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/insights"
	"github.com/FACorreiaa/go-flight-explorer/internal/api/trip"
)

// Config contains the handlers and middleware the router mounts.
type Config struct {
	DatasetHandler  *dataset.HandlerImpl
	TripHandler     *trip.HandlerImpl
	InsightsHandler *insights.HandlerImpl
	ClimateHandler  *climate.HandlerImpl
	AgentHandler    *agent.HandlerImpl

	AuthenticateMiddleware func(http.Handler) http.Handler
	AdminMiddleware        func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter builds the /api/v1 routes. Server-wide middleware (request id,
// logging, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8501"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dataset/metadata", cfg.DatasetHandler.GetMetadata)
		r.Get("/routes", cfg.TripHandler.ListRoutes)
		r.Post("/trips/match", cfg.TripHandler.MatchTrips)
		r.Get("/insights", cfg.InsightsHandler.GetInsights)
		r.Get("/climate", cfg.ClimateHandler.GetMonthlyClimate)

		r.Route("/agent/sessions", func(r chi.Router) {
			r.Post("/", cfg.AgentHandler.CreateSession)
			r.Get("/{sessionID}", cfg.AgentHandler.GetSession)
			r.Delete("/{sessionID}", cfg.AgentHandler.DeleteSession)
			r.Post("/{sessionID}/messages", cfg.AgentHandler.SendMessage)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(cfg.AdminMiddleware)
			r.Post("/admin/dataset/reload", cfg.DatasetHandler.Reload)
		})
	})

	return r
}
