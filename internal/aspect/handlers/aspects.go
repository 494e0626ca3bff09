package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"astro-server/internal/aspect"
	"astro-server/internal/chart"
	"astro-server/internal/shared/errors"
	"astro-server/internal/shared/response"
)

type AspectHandler struct {
	charts *chart.Service
}

func NewAspectHandler(charts *chart.Service) *AspectHandler {
	return &AspectHandler{charts: charts}
}

type aspectRequest struct {
	Birth   chart.BirthData `json:"birth_data"`
	Options chart.Options   `json:"options"`
	Config  *aspect.Config  `json:"config"`
}

type aspectResponse struct {
	Aspects []aspect.Aspect `json:"aspects"`
	Config  aspect.Config   `json:"config"`
}

// effectiveConfig applies the default orb table only when the request
// omits the block, and always echoes what was used.
func effectiveConfig(cfg *aspect.Config) aspect.Config {
	if cfg != nil {
		return *cfg
	}
	return aspect.DefaultConfig()
}

// ComputeAspects finds the aspects within a single chart.
func (h *AspectHandler) ComputeAspects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "compute_aspects")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req aspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	positions, _, err := h.charts.Positions(ctx, req.Birth, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cfg := effectiveConfig(req.Config)
	aspects, err := aspect.FindNatal(positions, cfg)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, aspectResponse{Aspects: aspects, Config: cfg})
}

type synastryRequest struct {
	BirthA  chart.BirthData `json:"birth_data_a"`
	BirthB  chart.BirthData `json:"birth_data_b"`
	Options chart.Options   `json:"options"`
	Config  *aspect.Config  `json:"config"`
}

// ComputeSynastry finds the aspects between two charts.
func (h *AspectHandler) ComputeSynastry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "compute_synastry")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req synastryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	positionsA, _, err := h.charts.Positions(ctx, req.BirthA, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	positionsB, _, err := h.charts.Positions(ctx, req.BirthB, req.Options)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cfg := effectiveConfig(req.Config)
	aspects, err := aspect.FindBetween(positionsA, positionsB, cfg)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, aspectResponse{Aspects: aspects, Config: cfg})
}
