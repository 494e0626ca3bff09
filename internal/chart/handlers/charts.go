package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"astro-server/internal/chart"
	"astro-server/internal/geocode"
	"astro-server/internal/shared/errors"
	"astro-server/internal/shared/response"
)

type ChartHandler struct {
	service  *chart.Service
	resolver geocode.Resolver
}

func NewChartHandler(service *chart.Service, resolver geocode.Resolver) *ChartHandler {
	return &ChartHandler{service: service, resolver: resolver}
}

type chartRequest struct {
	Birth   chart.BirthData `json:"birth_data"`
	Options chart.Options   `json:"options"`
}

// resolveLocation fills coordinates from the location name when a
// request names a place instead of supplying them.
func (h *ChartHandler) resolveLocation(r *http.Request, birth *chart.BirthData) error {
	if birth.LocationName == "" || birth.Latitude != 0 || birth.Longitude != 0 {
		return nil
	}
	if h.resolver == nil {
		return errors.Configuration("location lookup is not configured, supply latitude and longitude")
	}
	loc, err := h.resolver.Resolve(r.Context(), birth.LocationName)
	if err != nil {
		return err
	}
	birth.Latitude = loc.Latitude
	birth.Longitude = loc.Longitude
	if birth.UTCOffset == "" {
		birth.UTCOffset = loc.UTCOffset
	}
	return nil
}

// CreateChart computes and archives a birth chart.
func (h *ChartHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_chart")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.resolveLocation(r, &req.Birth); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.BuildAndSave(ctx, req.Birth, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

// GetChart loads an archived chart by ID.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_chart")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("chart ID is required"))
		return
	}

	result, err := h.service.GetByID(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// GetSummary computes the condensed chart view from query parameters.
func (h *ChartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "chart_summary")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	q := r.URL.Query()
	birth := chart.BirthData{
		Date:         q.Get("date"),
		Time:         q.Get("time"),
		UTCOffset:    q.Get("utc_offset"),
		LocationName: q.Get("location"),
	}

	var err error
	if lat := q.Get("lat"); lat != "" {
		if birth.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid latitude", err))
			return
		}
	}
	if lon := q.Get("lon"); lon != "" {
		if birth.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid longitude", err))
			return
		}
	}

	if err := h.resolveLocation(r, &birth); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	summary, err := h.service.Summarize(ctx, birth, chart.Options{HouseSystem: q.Get("house_system")})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, summary)
}
