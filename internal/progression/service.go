package progression

import (
	"context"
	"log/slog"

	"astro-server/internal/chart"
	"astro-server/internal/ephemeris"
)

// Result is a progressed chart together with the mapping that
// produced it.
type Result struct {
	Method            Method            `json:"method"`
	BirthInstant      ephemeris.Instant `json:"birth_instant"`
	TargetInstant     ephemeris.Instant `json:"target_instant"`
	ProgressedInstant ephemeris.Instant `json:"progressed_instant"`
	// Arc is the solar-arc shift in degrees, zero for other methods.
	Arc   float64      `json:"arc,omitempty"`
	Chart *chart.Chart `json:"chart"`
}

type Service struct {
	provider ephemeris.Provider
	charts   *chart.Service
	logger   *slog.Logger
}

func NewService(provider ephemeris.Provider, charts *chart.Service, logger *slog.Logger) *Service {
	logger.Debug("Initializing progression service")

	return &Service{
		provider: provider,
		charts:   charts,
		logger:   logger,
	}
}

// Progress computes the progressed chart of a birth chart at a target
// date using the given method.
func (s *Service) Progress(ctx context.Context, birth chart.BirthData, targetDate string, method Method, opts chart.Options) (*Result, error) {
	logger := s.logger.With("component", "progression_service", "operation", "progress", "method", method)

	birthInstant, err := ephemeris.FromCivil(birth.Date, birth.Time, birth.UTCOffset)
	if err != nil {
		return nil, err
	}
	targetInstant, err := ephemeris.FromCivil(targetDate, "", "")
	if err != nil {
		return nil, err
	}

	progressed, err := method.ProgressedInstant(birthInstant, targetInstant)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Method:            method,
		BirthInstant:      birthInstant,
		TargetInstant:     targetInstant,
		ProgressedInstant: progressed,
	}

	if method == SolarArc {
		result.Chart, result.Arc, err = s.solarArcChart(ctx, birthInstant, progressed, birth, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("Progression computed", "arc", result.Arc)
		return result, nil
	}

	result.Chart, err = s.charts.BuildAt(ctx, progressed, birth.Latitude, birth.Longitude, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Progression computed")
	return result, nil
}

// solarArcChart shifts every natal placement and cusp by the arc the
// sun has secondarily progressed. Natal speeds and retrograde flags
// are kept: solar arc directs the natal chart, it does not move the
// bodies themselves.
func (s *Service) solarArcChart(ctx context.Context, birthInstant, progressed ephemeris.Instant, birth chart.BirthData, opts chart.Options) (*chart.Chart, float64, error) {
	natal, err := s.charts.BuildAt(ctx, birthInstant, birth.Latitude, birth.Longitude, opts)
	if err != nil {
		return nil, 0, err
	}

	natalSun, err := s.provider.Position(ephemeris.Sun, birthInstant.JD)
	if err != nil {
		return nil, 0, err
	}
	progressedSun, err := s.provider.Position(ephemeris.Sun, progressed.JD)
	if err != nil {
		return nil, 0, err
	}
	arc := ephemeris.Normalize(progressedSun.Longitude - natalSun.Longitude)

	directed := *natal
	directed.ID = ""
	directed.Instant = progressed
	directed.CacheKey = ""
	directed.Ascendant = ephemeris.Normalize(natal.Ascendant + arc)
	directed.Midheaven = ephemeris.Normalize(natal.Midheaven + arc)

	directed.Placements = make([]chart.Placement, len(natal.Placements))
	for i, p := range natal.Placements {
		shifted := p
		shifted.Longitude = ephemeris.Normalize(p.Longitude + arc)
		shifted.Sign = ephemeris.SignOf(shifted.Longitude).String()
		shifted.DegreeInSign = ephemeris.DegreeInSign(shifted.Longitude)
		directed.Placements[i] = shifted
	}

	directed.Cusps = make([]chart.Cusp, len(natal.Cusps))
	for i, c := range natal.Cusps {
		shifted := c
		shifted.Longitude = ephemeris.Normalize(c.Longitude + arc)
		shifted.Sign = ephemeris.SignOf(shifted.Longitude).String()
		directed.Cusps[i] = shifted
	}

	// the directed placements occupy different signs, so the natal
	// tallies no longer apply
	if natal.Balance != nil {
		directed.Balance = chart.BalanceOf(directed.Placements)
	}

	return &directed, arc, nil
}
