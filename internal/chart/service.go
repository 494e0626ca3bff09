package chart

import (
	"context"
	"log/slog"

	"astro-server/internal/aspect"
	"astro-server/internal/cache"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

type Service struct {
	provider ephemeris.Provider
	repo     *Repository
	cache    *cache.Facade
	logger   *slog.Logger
}

func NewService(provider ephemeris.Provider, repo *Repository, cacheFacade *cache.Facade, logger *slog.Logger) *Service {
	logger.Debug("Initializing chart service")

	return &Service{
		provider: provider,
		repo:     repo,
		cache:    cacheFacade,
		logger:   logger,
	}
}

// defaultBodies are the points included when a request names none.
var defaultBodies = append(append([]ephemeris.Body{}, ephemeris.Planets...),
	ephemeris.NorthNode, ephemeris.SouthNode, ephemeris.Ascendant, ephemeris.Midheaven)

// Build computes a chart from birth data. Results are cached under a
// key derived from every input that affects the output.
func (s *Service) Build(ctx context.Context, birth BirthData, opts Options) (*Chart, error) {
	instant, err := ephemeris.FromCivil(birth.Date, birth.Time, birth.UTCOffset)
	if err != nil {
		return nil, err
	}
	c, err := s.BuildAt(ctx, instant, birth.Latitude, birth.Longitude, opts)
	if err != nil {
		return nil, err
	}
	c.Location = birth.LocationName
	return c, nil
}

// BuildAt computes a chart for an already-resolved instant. The
// progression engine calls this directly since progressed instants
// have no civil representation of their own.
func (s *Service) BuildAt(ctx context.Context, instant ephemeris.Instant, latitude, longitude float64, opts Options) (*Chart, error) {
	logger := s.logger.With("component", "chart_service", "operation", "build")

	system, err := ephemeris.ParseHouseSystem(opts.HouseSystem)
	if err != nil {
		return nil, err
	}

	bodies := defaultBodies
	if len(opts.Bodies) > 0 {
		bodies = make([]ephemeris.Body, 0, len(opts.Bodies))
		for _, name := range opts.Bodies {
			b, err := ephemeris.ParseBody(name)
			if err != nil {
				return nil, err
			}
			bodies = append(bodies, b)
		}
	}

	key := s.buildKey(instant, latitude, longitude, system, bodies, opts)
	var cached Chart
	if s.cache.Get(ctx, key, &cached) {
		logger.Debug("Chart served from cache", "cache_key", key)
		return &cached, nil
	}

	houses, err := s.provider.Houses(instant.JD, latitude, longitude, system)
	if err != nil {
		return nil, err
	}

	placements := make([]Placement, 0, len(bodies))
	for _, b := range bodies {
		var placement Placement
		switch b {
		case ephemeris.Ascendant:
			placement = anglePlacement(b, houses.Ascendant)
		case ephemeris.Midheaven:
			placement = anglePlacement(b, houses.Midheaven)
		default:
			pos, err := s.provider.Position(b, instant.JD)
			if err != nil {
				return nil, err
			}
			placement = Placement{
				Body:       b,
				Longitude:  pos.Longitude,
				Latitude:   pos.Latitude,
				Speed:      pos.Speed,
				Retrograde: pos.Retrograde,
			}
		}
		placement.Sign = ephemeris.SignOf(placement.Longitude).String()
		placement.DegreeInSign = ephemeris.DegreeInSign(placement.Longitude)
		placement.House = HouseOf(placement.Longitude, houses.Cusps)
		placements = append(placements, placement)
	}

	cusps := make([]Cusp, 12)
	for i, lon := range houses.Cusps {
		cusps[i] = Cusp{House: i + 1, Longitude: lon, Sign: ephemeris.SignOf(lon).String()}
	}

	out := &Chart{
		Instant:     instant,
		Latitude:    latitude,
		Longitude:   longitude,
		HouseSystem: string(system),
		Placements:  placements,
		Cusps:       cusps,
		Ascendant:   houses.Ascendant,
		Midheaven:   houses.Midheaven,
		CacheKey:    key,
	}

	if opts.WithAspects {
		cfg := aspect.DefaultConfig()
		if opts.AspectCfg != nil {
			cfg = *opts.AspectCfg
		}
		aspects, err := aspect.FindNatal(s.aspectPositions(placements), cfg)
		if err != nil {
			return nil, err
		}
		out.Aspects = aspects
	}

	if opts.WithBalance {
		out.Balance = BalanceOf(placements)
	}

	s.cache.Put(ctx, key, out, s.cache.ChartTTL())
	logger.Info("Chart built", "cache_key", key, "bodies", len(placements))
	return out, nil
}

// BuildAndSave computes a chart and archives it under a fresh ID.
func (s *Service) BuildAndSave(ctx context.Context, birth BirthData, opts Options) (*Chart, error) {
	out, err := s.Build(ctx, birth, opts)
	if err != nil {
		return nil, err
	}
	if s.repo != nil {
		saved, err := s.repo.Save(ctx, out)
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return out, nil
}

// GetByID loads an archived chart.
func (s *Service) GetByID(ctx context.Context, id string) (*Chart, error) {
	if s.repo == nil {
		return nil, errors.Configuration("chart archive requires the database to be enabled")
	}
	return s.repo.GetByID(ctx, id)
}

// Summarize builds the condensed chart view.
func (s *Service) Summarize(ctx context.Context, birth BirthData, opts Options) (*Summary, error) {
	opts.WithBalance = true
	full, err := s.Build(ctx, birth, opts)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		DominantElement:  full.Balance.DominantElement,
		DominantModality: full.Balance.DominantModality,
		TimeKnown:        full.Instant.TimeKnown,
		AscendantSign:    ephemeris.SignOf(full.Ascendant).String(),
	}
	if p := full.PlacementOf(ephemeris.Sun); p != nil {
		summary.SunSign = p.Sign
	}
	if p := full.PlacementOf(ephemeris.Moon); p != nil {
		summary.MoonSign = p.Sign
	}
	return summary, nil
}

// Positions exposes the ephemeris positions of a chart's bodies for
// the aspect, transit and progression services.
func (s *Service) Positions(ctx context.Context, birth BirthData, opts Options) ([]ephemeris.Position, ephemeris.Instant, error) {
	full, err := s.Build(ctx, birth, opts)
	if err != nil {
		return nil, ephemeris.Instant{}, err
	}
	return s.aspectPositions(full.Placements), full.Instant, nil
}

func (s *Service) aspectPositions(placements []Placement) []ephemeris.Position {
	out := make([]ephemeris.Position, len(placements))
	for i, p := range placements {
		out[i] = ephemeris.Position{
			Body:       p.Body,
			Longitude:  p.Longitude,
			Speed:      p.Speed,
			Retrograde: p.Retrograde,
		}
	}
	return out
}

func (s *Service) buildKey(instant ephemeris.Instant, latitude, longitude float64, system ephemeris.HouseSystem, bodies []ephemeris.Body, opts Options) string {
	names := make([]string, len(bodies))
	for i, b := range bodies {
		names[i] = string(b)
	}
	parts := map[string]any{
		"jd":           instant.JD,
		"time_known":   instant.TimeKnown,
		"lat":          latitude,
		"lon":          longitude,
		"house_system": string(system),
		"bodies":       names,
		"aspects":      opts.WithAspects,
		"balance":      opts.WithBalance,
	}
	if opts.AspectCfg != nil {
		for t, orb := range opts.AspectCfg.Orbs {
			parts["orb_"+string(t)] = orb
		}
	}
	return cache.Key("chart", parts)
}

// anglePlacement wraps the ascendant or midheaven as a placement; the
// angles carry no latitude or speed of their own.
func anglePlacement(b ephemeris.Body, lon float64) Placement {
	return Placement{Body: b, Longitude: lon}
}

// HouseOf assigns a longitude to the house whose half-open interval
// [cusp[i], cusp[i+1]) contains it. A body exactly on a cusp belongs
// to the house beginning at that cusp.
func HouseOf(lon float64, cusps [12]float64) int {
	for i := 0; i < 12; i++ {
		start := cusps[i]
		arc := ephemeris.Normalize(cusps[(i+1)%12] - start)
		offset := ephemeris.Normalize(lon - start)
		if offset < arc {
			return i + 1
		}
	}
	// only reachable with malformed cusps
	return 12
}

// BalanceOf tallies elements and modalities with equal weight per
// included body, normalized to sum to 100.
func BalanceOf(placements []Placement) *Balance {
	b := &Balance{
		Elements:   make(map[ephemeris.Element]float64, 4),
		Modalities: make(map[ephemeris.Modality]float64, 3),
	}
	if len(placements) == 0 {
		return b
	}
	weight := 100.0 / float64(len(placements))
	for _, p := range placements {
		sign := ephemeris.SignOf(p.Longitude)
		b.Elements[sign.Element()] += weight
		b.Modalities[sign.Modality()] += weight
	}
	// fixed iteration order keeps ties deterministic
	for _, element := range []ephemeris.Element{ephemeris.Fire, ephemeris.Earth, ephemeris.Air, ephemeris.Water} {
		if b.Elements[element] > b.Elements[b.DominantElement] {
			b.DominantElement = element
		}
	}
	for _, modality := range []ephemeris.Modality{ephemeris.Cardinal, ephemeris.Fixed, ephemeris.Mutable} {
		if b.Modalities[modality] > b.Modalities[b.DominantModality] {
			b.DominantModality = modality
		}
	}
	return b
}
