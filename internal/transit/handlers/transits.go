package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"astro-server/internal/aspect"
	"astro-server/internal/cache"
	"astro-server/internal/chart"
	"astro-server/internal/ephemeris"
	"astro-server/internal/events"
	"astro-server/internal/shared/errors"
	"astro-server/internal/shared/response"
	"astro-server/internal/transit"
)

type TransitHandler struct {
	search    *transit.Search
	charts    *chart.Service
	cache     *cache.Facade
	publisher *events.Publisher
}

func NewTransitHandler(search *transit.Search, charts *chart.Service, cacheFacade *cache.Facade, publisher *events.Publisher) *TransitHandler {
	return &TransitHandler{
		search:    search,
		charts:    charts,
		cache:     cacheFacade,
		publisher: publisher,
	}
}

func effectiveConfig(cfg *aspect.Config) aspect.Config {
	if cfg != nil {
		return *cfg
	}
	return aspect.TransitConfig()
}

func configParts(parts map[string]any, cfg aspect.Config) map[string]any {
	for t, orb := range cfg.Orbs {
		parts["orb_"+string(t)] = orb
	}
	return parts
}

type forDateRequest struct {
	Birth   chart.BirthData `json:"birth_data"`
	Date    string          `json:"date"`
	Bodies  []string        `json:"bodies,omitempty"`
	Options chart.Options   `json:"options"`
	Config  *aspect.Config  `json:"config"`
}

type forDateResponse struct {
	Date     string          `json:"date"`
	Aspects  []aspect.Aspect `json:"aspects"`
	Config   aspect.Config   `json:"config"`
	CacheKey string          `json:"cache_key"`
}

func parseBodies(names []string) ([]ephemeris.Body, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]ephemeris.Body, 0, len(names))
	for _, name := range names {
		b, err := ephemeris.ParseBody(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ComputeForDate returns the aspects the sky on one date forms against
// a natal chart.
func (h *TransitHandler) ComputeForDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "transits_for_date")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req forDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	at, err := ephemeris.FromCivil(req.Date, "", "")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	bodies, err := parseBodies(req.Bodies)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	cfg := effectiveConfig(req.Config)

	natal, _, err := h.charts.Positions(ctx, req.Birth, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	key := cache.Key("transits_for_date", configParts(map[string]any{
		"date":   req.Date,
		"birth":  req.Birth.Date + "T" + req.Birth.Time + req.Birth.UTCOffset,
		"lat":    req.Birth.Latitude,
		"lon":    req.Birth.Longitude,
		"bodies": req.Bodies,
	}, cfg))

	var cached forDateResponse
	if h.cache.Get(ctx, key, &cached) {
		response.Success(w, http.StatusOK, cached)
		return
	}

	aspects, err := h.search.ForDate(ctx, natal, at, bodies, cfg)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result := forDateResponse{Date: req.Date, Aspects: aspects, Config: cfg, CacheKey: key}
	h.cache.Put(ctx, key, result, h.cache.TransitsForDateTTL(time.Now()))
	response.Success(w, http.StatusOK, result)
}

type periodRequest struct {
	Birth     chart.BirthData `json:"birth_data"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Bodies    []string        `json:"bodies,omitempty"`
	Options   chart.Options   `json:"options"`
	Config    *aspect.Config  `json:"config"`
}

type periodResponse struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Events    []transit.Event `json:"events"`
	Config    aspect.Config   `json:"config"`
	CacheKey  string          `json:"cache_key"`
}

// ComputePeriod scans a date range for exact transits.
func (h *TransitHandler) ComputePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "transits_period")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	start, err := ephemeris.FromCivil(req.StartDate, "00:00:00", "")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	end, err := ephemeris.FromCivil(req.EndDate, "23:59:59", "")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	bodies, err := parseBodies(req.Bodies)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	cfg := effectiveConfig(req.Config)

	natal, _, err := h.charts.Positions(ctx, req.Birth, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	key := cache.Key("transits_period", configParts(map[string]any{
		"start":  req.StartDate,
		"end":    req.EndDate,
		"birth":  req.Birth.Date + "T" + req.Birth.Time + req.Birth.UTCOffset,
		"lat":    req.Birth.Latitude,
		"lon":    req.Birth.Longitude,
		"bodies": req.Bodies,
	}, cfg))

	var cached periodResponse
	if h.cache.Get(ctx, key, &cached) {
		response.Success(w, http.StatusOK, cached)
		return
	}

	transits, err := h.search.Period(ctx, natal, start, end, bodies, cfg)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result := periodResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Events:    transits,
		Config:    cfg,
		CacheKey:  key,
	}
	h.cache.Put(ctx, key, result, h.cache.TimelineTTL())
	h.publisher.PublishTimeline(ctx, key, result)
	response.Success(w, http.StatusOK, result)
}

type forecastRequest struct {
	Birth     chart.BirthData `json:"birth_data"`
	StartDate string          `json:"start_date"`
	Options   chart.Options   `json:"options"`
}

type forecastResponse struct {
	Forecast *transit.Forecast `json:"forecast"`
	CacheKey string            `json:"cache_key"`
}

// ComputeForecast runs the five-year outer-body forecast.
func (h *TransitHandler) ComputeForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "transits_forecast")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	start, err := ephemeris.FromCivil(req.StartDate, "", "")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	natal, _, err := h.charts.Positions(ctx, req.Birth, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	key := cache.Key("forecast", map[string]any{
		"start": req.StartDate,
		"birth": req.Birth.Date + "T" + req.Birth.Time + req.Birth.UTCOffset,
		"lat":   req.Birth.Latitude,
		"lon":   req.Birth.Longitude,
	})

	var cached forecastResponse
	if h.cache.Get(ctx, key, &cached) {
		response.Success(w, http.StatusOK, cached)
		return
	}

	forecast, err := h.search.FiveYearForecast(ctx, natal, start)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result := forecastResponse{Forecast: forecast, CacheKey: key}
	h.cache.Put(ctx, key, result, h.cache.ForecastTTL())
	h.publisher.PublishForecast(ctx, key, result)
	response.Success(w, http.StatusOK, result)
}
