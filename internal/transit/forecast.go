package transit

import (
	"context"

	"astro-server/internal/aspect"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/config"
)

// hardAspects are the aspect types that grade an outer-body transit
// above routine when they hit a personal point.
var hardAspects = map[aspect.Type]bool{
	aspect.Conjunction: true,
	aspect.Opposition:  true,
	aspect.Square:      true,
}

// outerBodies move slowly enough that their exact transits mark
// year-scale themes rather than passing weather.
var outerBodies = map[ephemeris.Body]bool{
	ephemeris.Jupiter: true,
	ephemeris.Saturn:  true,
	ephemeris.Uranus:  true,
	ephemeris.Neptune: true,
	ephemeris.Pluto:   true,
}

var personalPoints = map[ephemeris.Body]bool{
	ephemeris.Sun:       true,
	ephemeris.Moon:      true,
	ephemeris.Ascendant: true,
}

// grade classifies one event by the fixed significance table keyed on
// (transiting body, aspect type, natal body).
func grade(e Event) Significance {
	if !outerBodies[e.Transiting] || !hardAspects[e.Type] || !personalPoints[e.Natal] {
		return Routine
	}
	if e.Type == aspect.Conjunction || e.Type == aspect.Opposition {
		return Major
	}
	return Significant
}

// FiveYearForecast scans the configured forecast span for transits of
// the slow bodies against a natal chart and grades each event.
func (s *Search) FiveYearForecast(ctx context.Context, natal []ephemeris.Position, start ephemeris.Instant) (*Forecast, error) {
	cfg := config.GlobalConfig.Forecast
	bodies := make([]ephemeris.Body, 0, len(cfg.Planets))
	for _, name := range cfg.Planets {
		b, err := ephemeris.ParseBody(name)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}

	end := start.AddDays(float64(cfg.Years) * 365.25)
	events, err := s.Period(ctx, natal, start, end, bodies, aspect.TransitConfig())
	if err != nil {
		return nil, err
	}

	forecast := &Forecast{
		Start:    start.UTC,
		End:      end.UTC,
		Timeline: events,
	}
	for i := range forecast.Timeline {
		forecast.Timeline[i].Significance = grade(forecast.Timeline[i])
		if forecast.Timeline[i].Significance != Routine {
			forecast.Highlights = append(forecast.Highlights, forecast.Timeline[i])
		}
	}
	return forecast, nil
}
