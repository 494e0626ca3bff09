package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"astro-server/internal/chart"
	"astro-server/internal/progression"
	"astro-server/internal/shared/errors"
	"astro-server/internal/shared/response"
)

type ProgressionHandler struct {
	service *progression.Service
}

func NewProgressionHandler(service *progression.Service) *ProgressionHandler {
	return &ProgressionHandler{service: service}
}

type progressRequest struct {
	Birth      chart.BirthData `json:"birth_data"`
	TargetDate string          `json:"target_date"`
	Method     string          `json:"method"`
	Options    chart.Options   `json:"options"`
}

// ComputeProgression builds the progressed chart for a target date.
func (h *ProgressionHandler) ComputeProgression(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "compute_progression")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	method, err := progression.ParseMethod(req.Method)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Progress(ctx, req.Birth, req.TargetDate, method, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// GetTimeline samples progressed positions over a span of target
// dates, flagging sign ingresses.
func (h *ProgressionHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "progression_timeline")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	q := r.URL.Query()
	method, err := progression.ParseMethod(q.Get("method"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	birth := chart.BirthData{
		Date:      q.Get("date"),
		Time:      q.Get("time"),
		UTCOffset: q.Get("utc_offset"),
	}
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

	interval := 30.0
	if raw := q.Get("interval_days"); raw != "" {
		if interval, err = strconv.ParseFloat(raw, 64); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid interval_days", err))
			return
		}
	}

	var bodies []string
	if raw := q.Get("bodies"); raw != "" {
		bodies = strings.Split(raw, ",")
	}

	entries, err := h.service.Timeline(ctx, birth, q.Get("start_date"), q.Get("end_date"), interval, method, bodies)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, entries)
}
