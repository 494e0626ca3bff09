package transit

import (
	"context"
	"testing"
	"time"

	"astro-server/internal/aspect"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/config"
)

func initForecastConfig(t *testing.T) {
	t.Helper()
	prev := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		Forecast: config.ForecastConfig{
			Years:   5,
			Planets: []string{"jupiter", "saturn", "uranus", "neptune", "pluto"},
		},
	}
	t.Cleanup(func() { config.GlobalConfig = prev })
}

func TestGradeTable(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  Significance
	}{
		{"saturn conjunct sun", Event{Transiting: ephemeris.Saturn, Type: aspect.Conjunction, Natal: ephemeris.Sun}, Major},
		{"pluto opposite ascendant", Event{Transiting: ephemeris.Pluto, Type: aspect.Opposition, Natal: ephemeris.Ascendant}, Major},
		{"uranus square moon", Event{Transiting: ephemeris.Uranus, Type: aspect.Square, Natal: ephemeris.Moon}, Significant},
		{"jupiter conjunct moon", Event{Transiting: ephemeris.Jupiter, Type: aspect.Conjunction, Natal: ephemeris.Moon}, Major},
		{"jupiter square sun", Event{Transiting: ephemeris.Jupiter, Type: aspect.Square, Natal: ephemeris.Sun}, Significant},
		{"neptune trine sun", Event{Transiting: ephemeris.Neptune, Type: aspect.Trine, Natal: ephemeris.Sun}, Routine},
		{"jupiter trine ascendant", Event{Transiting: ephemeris.Jupiter, Type: aspect.Trine, Natal: ephemeris.Ascendant}, Routine},
		{"saturn square venus", Event{Transiting: ephemeris.Saturn, Type: aspect.Square, Natal: ephemeris.Venus}, Routine},
		{"mars conjunct sun", Event{Transiting: ephemeris.Mars, Type: aspect.Conjunction, Natal: ephemeris.Sun}, Routine},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := grade(c.event); got != c.want {
				t.Errorf("grade = %s, want %s", got, c.want)
			}
		})
	}
}

func TestFiveYearForecast(t *testing.T) {
	initForecastConfig(t)
	s, provider := testSearch()

	sun, err := provider.Position(ephemeris.Sun, instant(1990, time.June, 15).JD)
	if err != nil {
		t.Fatalf("natal sun: %v", err)
	}
	natal := []ephemeris.Position{
		sun,
		{Body: ephemeris.Ascendant, Longitude: 123.45},
	}

	forecast, err := s.FiveYearForecast(context.Background(), natal, instant(2025, time.January, 1))
	if err != nil {
		t.Fatalf("FiveYearForecast error: %v", err)
	}

	if got := forecast.End.Sub(forecast.Start); got < 5*365*24*time.Hour {
		t.Errorf("forecast span = %v, want five years", got)
	}
	if len(forecast.Timeline) == 0 {
		t.Fatal("five years of outer transits should produce events")
	}
	for i, e := range forecast.Timeline {
		if e.Significance == "" {
			t.Errorf("event %d ungraded", i)
		}
		if i > 0 && e.ExactAt.Before(forecast.Timeline[i-1].ExactAt) {
			t.Errorf("timeline out of order at index %d", i)
		}
	}
	for _, h := range forecast.Highlights {
		if h.Significance == Routine {
			t.Error("routine event leaked into highlights")
		}
	}
}
