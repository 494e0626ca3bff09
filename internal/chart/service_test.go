package chart

import (
	"context"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"astro-server/internal/cache"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

func testService() *Service {
	provider := ephemeris.NewAnalyticProvider(1800, 2200)
	return NewService(provider, nil, nil, slog.Default())
}

var losAngeles = BirthData{
	Date:      "1990-06-15",
	Time:      "14:25:00",
	UTCOffset: "-07:00",
	Latitude:  34.0522,
	Longitude: -118.2437,
}

func TestBuildChartLosAngeles(t *testing.T) {
	s := testService()
	c, err := s.Build(context.Background(), losAngeles, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	sun := c.PlacementOf(ephemeris.Sun)
	if sun == nil {
		t.Fatal("sun missing from default placements")
	}
	if sun.Sign != "gemini" {
		t.Errorf("sun sign = %s (lon %.4f), want gemini", sun.Sign, sun.Longitude)
	}

	if len(c.Placements) != len(ephemeris.Planets)+4 {
		t.Errorf("got %d placements, want planets plus nodes and angles", len(c.Placements))
	}
	for _, p := range c.Placements {
		if p.House < 1 || p.House > 12 {
			t.Errorf("%s assigned house %d", p.Body, p.House)
		}
		if p.Sign == "" {
			t.Errorf("%s has no sign", p.Body)
		}
	}

	if len(c.Cusps) != 12 {
		t.Fatalf("got %d cusps, want 12", len(c.Cusps))
	}
	if c.Cusps[0].Longitude != c.Ascendant {
		t.Errorf("cusp 1 = %.4f, want ascendant %.4f", c.Cusps[0].Longitude, c.Ascendant)
	}
	if c.HouseSystem != "placidus" {
		t.Errorf("house system = %s, want placidus default", c.HouseSystem)
	}
	if c.CacheKey == "" {
		t.Error("chart should carry its cache key")
	}

	asc := c.PlacementOf(ephemeris.Ascendant)
	if asc == nil || asc.House != 1 {
		t.Errorf("ascendant should sit on cusp 1, got %+v", asc)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	s := testService()
	first, err := s.Build(context.Background(), losAngeles, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	second, err := s.Build(context.Background(), losAngeles, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different charts")
	}
	if !first.CreatedAt.IsZero() {
		t.Error("computed chart carries a wall-clock timestamp; only the archive stamps charts")
	}
}

func TestBuildServesFromCache(t *testing.T) {
	provider := ephemeris.NewAnalyticProvider(1800, 2200)
	facade := cache.NewFacade(cache.NewMemoryStore(), slog.Default())
	s := NewService(provider, nil, facade, slog.Default())

	first, err := s.Build(context.Background(), losAngeles, Options{WithBalance: true})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	second, err := s.Build(context.Background(), losAngeles, Options{WithBalance: true})
	if err != nil {
		t.Fatalf("cached Build error: %v", err)
	}
	if second.Balance == nil {
		t.Fatal("cached chart lost its balance block")
	}
	if first.CacheKey != second.CacheKey {
		t.Error("cache key changed between identical builds")
	}
}

func TestBuildWithAspectsAndBalance(t *testing.T) {
	s := testService()
	c, err := s.Build(context.Background(), losAngeles, Options{WithAspects: true, WithBalance: true})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(c.Aspects) == 0 {
		t.Error("a full chart should form at least one aspect at default orbs")
	}
	if c.Balance == nil {
		t.Fatal("balance requested but missing")
	}
	var elemTotal, modTotal float64
	for _, v := range c.Balance.Elements {
		elemTotal += v
	}
	for _, v := range c.Balance.Modalities {
		modTotal += v
	}
	if math.Abs(elemTotal-100) > 1e-6 {
		t.Errorf("element tallies sum to %.6f, want 100", elemTotal)
	}
	if math.Abs(modTotal-100) > 1e-6 {
		t.Errorf("modality tallies sum to %.6f, want 100", modTotal)
	}
	if c.Balance.DominantElement == "" || c.Balance.DominantModality == "" {
		t.Error("dominant element/modality not set")
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	s := testService()
	ctx := context.Background()

	if _, err := s.Build(ctx, BirthData{}, Options{}); !errors.Is(err, errors.ErrorTypeValidation) {
		t.Errorf("empty birth data: expected validation error, got %v", err)
	}

	bad := losAngeles
	bad.Date = "1700-01-01"
	if _, err := s.Build(ctx, bad, Options{}); !errors.Is(err, errors.ErrorTypeEphemerisRange) {
		t.Errorf("year 1700: expected ephemeris_range error, got %v", err)
	}

	if _, err := s.Build(ctx, losAngeles, Options{Bodies: []string{"vulcan"}}); !errors.Is(err, errors.ErrorTypeConfiguration) {
		t.Errorf("unknown body: expected configuration error, got %v", err)
	}

	if _, err := s.Build(ctx, losAngeles, Options{HouseSystem: "campanus"}); !errors.Is(err, errors.ErrorTypeConfiguration) {
		t.Errorf("unknown house system: expected configuration error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s := testService()
	sum, err := s.Summarize(context.Background(), losAngeles, Options{})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if sum.SunSign != "gemini" {
		t.Errorf("sun sign = %s, want gemini", sum.SunSign)
	}
	if sum.MoonSign == "" || sum.AscendantSign == "" {
		t.Errorf("incomplete summary: %+v", sum)
	}
	if !sum.TimeKnown {
		t.Error("time was given, TimeKnown should be true")
	}
}

func TestHouseOfLowerInclusive(t *testing.T) {
	var cusps [12]float64
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}

	cases := []struct {
		lon  float64
		want int
	}{
		{0, 1},      // exactly on cusp 1
		{29.999, 1}, // just inside house 1
		{30, 2},     // exactly on cusp 2 belongs to house 2
		{45, 2},
		{330, 12},
		{359.999, 12},
	}
	for _, c := range cases {
		if got := HouseOf(c.lon, cusps); got != c.want {
			t.Errorf("HouseOf(%v) = %d, want %d", c.lon, got, c.want)
		}
	}
}

func TestHouseOfWrappingCusps(t *testing.T) {
	// first house straddles the 0-degree boundary
	cusps := [12]float64{340, 10, 40, 70, 100, 130, 160, 190, 220, 250, 280, 310}

	cases := []struct {
		lon  float64
		want int
	}{
		{340, 1},
		{355, 1},
		{5, 1},
		{10, 2},
		{339.999, 12},
	}
	for _, c := range cases {
		if got := HouseOf(c.lon, cusps); got != c.want {
			t.Errorf("HouseOf(%v) = %d, want %d", c.lon, got, c.want)
		}
	}
}

func TestGetByIDWithoutDatabase(t *testing.T) {
	s := testService()
	if _, err := s.GetByID(context.Background(), "chart-deadbeef"); !errors.Is(err, errors.ErrorTypeConfiguration) {
		t.Errorf("expected configuration error without a database, got %v", err)
	}
}
