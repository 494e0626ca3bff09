package server

import (
	"log/slog"
	"net/http"

	aspectHandlers "astro-server/internal/aspect/handlers"
	"astro-server/internal/cache"
	"astro-server/internal/chart"
	chartHandlers "astro-server/internal/chart/handlers"
	"astro-server/internal/events"
	"astro-server/internal/geocode"
	"astro-server/internal/progression"
	progressionHandlers "astro-server/internal/progression/handlers"
	serverHandlers "astro-server/internal/server/handlers"
	"astro-server/internal/shared/database"
	"astro-server/internal/transit"
	transitHandlers "astro-server/internal/transit/handlers"
)

type Routes struct {
	db                 *database.DB
	chartService       *chart.Service
	transitSearch      *transit.Search
	progressionService *progression.Service
	resolver           geocode.Resolver
	cache              *cache.Facade
	publisher          *events.Publisher
	logger             *slog.Logger
}

func NewRoutes(
	db *database.DB,
	chartService *chart.Service,
	transitSearch *transit.Search,
	progressionService *progression.Service,
	resolver geocode.Resolver,
	cacheFacade *cache.Facade,
	publisher *events.Publisher,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:                 db,
		chartService:       chartService,
		transitSearch:      transitSearch,
		progressionService: progressionService,
		resolver:           resolver,
		cache:              cacheFacade,
		publisher:          publisher,
		logger:             logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	chartHandler := chartHandlers.NewChartHandler(r.chartService, r.resolver)
	aspectHandler := aspectHandlers.NewAspectHandler(r.chartService)
	transitHandler := transitHandlers.NewTransitHandler(r.transitSearch, r.chartService, r.cache, r.publisher)
	progressionHandler := progressionHandlers.NewProgressionHandler(r.progressionService)

	mux.Handle("/api/health", healthHandler)

	mux.HandleFunc("/api/charts", chartHandler.CreateChart)
	mux.HandleFunc("/api/charts/summary", chartHandler.GetSummary)
	mux.HandleFunc("/api/charts/{id}", chartHandler.GetChart)

	mux.HandleFunc("/api/aspects", aspectHandler.ComputeAspects)
	mux.HandleFunc("/api/aspects/synastry", aspectHandler.ComputeSynastry)

	mux.HandleFunc("/api/transits", transitHandler.ComputeForDate)
	mux.HandleFunc("/api/transits/period", transitHandler.ComputePeriod)
	mux.HandleFunc("/api/transits/forecast", transitHandler.ComputeForecast)

	mux.HandleFunc("/api/progressions", progressionHandler.ComputeProgression)
	mux.HandleFunc("/api/progressions/timeline", progressionHandler.GetTimeline)

	logger.Info("Routes configured successfully",
		"chart_endpoints", []string{"/api/charts", "/api/charts/summary", "/api/charts/{id}"},
		"aspect_endpoints", []string{"/api/aspects", "/api/aspects/synastry"},
		"transit_endpoints", []string{"/api/transits", "/api/transits/period", "/api/transits/forecast"},
		"progression_endpoints", []string{"/api/progressions", "/api/progressions/timeline"},
	)

	return mux
}
