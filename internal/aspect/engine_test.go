package aspect

import (
	"math"
	"testing"

	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

func pos(b ephemeris.Body, lon, speed float64) ephemeris.Position {
	return ephemeris.Position{Body: b, Longitude: lon, Speed: speed}
}

func TestFindNatalDetectsExactTrine(t *testing.T) {
	positions := []ephemeris.Position{
		pos(ephemeris.Sun, 10, 1),
		pos(ephemeris.Moon, 130, 13),
	}
	aspects, err := FindNatal(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 1 {
		t.Fatalf("got %d aspects, want 1", len(aspects))
	}
	a := aspects[0]
	if a.Type != Trine {
		t.Errorf("type = %s, want trine", a.Type)
	}
	if a.Orb != 0 {
		t.Errorf("orb = %v, want 0", a.Orb)
	}
	if a.Influence != 1 {
		t.Errorf("influence = %v, want 1 at exactness", a.Influence)
	}
}

func TestFindNatalSkipsPairsOutsideOrb(t *testing.T) {
	positions := []ephemeris.Position{
		pos(ephemeris.Sun, 0, 1),
		pos(ephemeris.Mars, 101, 0.5), // 11 past sextile, 11 short of trine
	}
	aspects, err := FindNatal(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 0 {
		t.Errorf("got %d aspects, want none for a 101 degree separation", len(aspects))
	}
}

func TestTightestOrbWins(t *testing.T) {
	// 26 degrees apart: within a wide 30-degree conjunction orb and
	// 4 from an exact semi-sextile. The semi-sextile is tighter.
	cfg := Config{
		Types: []Type{Conjunction, SemiSextile},
		Orbs:  map[Type]float64{Conjunction: 30, SemiSextile: 6},
	}
	aspects, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Venus, 0, 1.2),
		pos(ephemeris.Mercury, 26, 1.4),
	}, cfg)
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 1 {
		t.Fatalf("got %d aspects, want 1", len(aspects))
	}
	if aspects[0].Type != SemiSextile {
		t.Errorf("type = %s, want semi_sextile (orb 4 beats orb 26)", aspects[0].Type)
	}
}

func TestOrbTieBreaksByPrecedence(t *testing.T) {
	// 90 degrees apart with trine and square both configured at the
	// same orb: the square is exact (orb 0), the trine is 30 off and
	// outside orb. Force a genuine tie instead: separation 105 sits
	// 15 from both square and trine.
	cfg := Config{
		Types: []Type{Square, Trine},
		Orbs:  map[Type]float64{Square: 15, Trine: 15},
	}
	aspects, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Sun, 0, 1),
		pos(ephemeris.Jupiter, 105, 0.08),
	}, cfg)
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 1 {
		t.Fatalf("got %d aspects, want 1", len(aspects))
	}
	if aspects[0].Type != Trine {
		t.Errorf("type = %s, want trine (precedence beats square on equal orb)", aspects[0].Type)
	}
}

func TestSeparationWrapsThroughZero(t *testing.T) {
	aspects, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Sun, 358, 1),
		pos(ephemeris.Moon, 4, 13),
	}, DefaultConfig())
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 1 || aspects[0].Type != Conjunction {
		t.Fatalf("expected a single conjunction across the 0 boundary, got %+v", aspects)
	}
	if got := aspects[0].Orb; math.Abs(got-6) > 1e-9 {
		t.Errorf("orb = %v, want 6", got)
	}
}

func TestApplyingAndSeparating(t *testing.T) {
	cfg := DefaultConfig()

	// moon at 85, sun at 0: separation 85, moving toward the square
	// at 90 because the moon gains on the sun
	applying, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Moon, 85, 13),
		pos(ephemeris.Sun, 0, 1),
	}, cfg)
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(applying) != 1 || !applying[0].Applying {
		t.Errorf("moon 85 vs sun 0 should be applying to the square, got %+v", applying)
	}

	// moon at 95 has already passed the exact square and pulls away
	separating, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Moon, 95, 13),
		pos(ephemeris.Sun, 0, 1),
	}, cfg)
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(separating) != 1 || separating[0].Applying {
		t.Errorf("moon 95 vs sun 0 should be separating from the square, got %+v", separating)
	}
}

func TestZeroRelativeSpeedIsSeparating(t *testing.T) {
	aspects, err := FindNatal([]ephemeris.Position{
		pos(ephemeris.Sun, 0, 1),
		pos(ephemeris.Venus, 58, 1),
	}, DefaultConfig())
	if err != nil {
		t.Fatalf("FindNatal error: %v", err)
	}
	if len(aspects) != 1 {
		t.Fatalf("got %d aspects, want 1", len(aspects))
	}
	if aspects[0].Applying {
		t.Error("zero relative speed must classify as separating")
	}
}

func TestFindBetweenIsDirectional(t *testing.T) {
	a := []ephemeris.Position{pos(ephemeris.Sun, 0, 1), pos(ephemeris.Moon, 90, 13)}
	b := []ephemeris.Position{pos(ephemeris.Mars, 120, 0.5)}
	aspects, err := FindBetween(a, b, DefaultConfig())
	if err != nil {
		t.Fatalf("FindBetween error: %v", err)
	}
	// sun trine mars (120) and moon sextile mars (30 -> semi_sextile)
	if len(aspects) != 2 {
		t.Fatalf("got %d aspects, want 2: %+v", len(aspects), aspects)
	}
	for _, asp := range aspects {
		if asp.Body2 != ephemeris.Mars {
			t.Errorf("body2 = %s, want mars on the B side", asp.Body2)
		}
	}
}

func TestFindBetweenIsSymmetric(t *testing.T) {
	a := []ephemeris.Position{pos(ephemeris.Sun, 10, 1), pos(ephemeris.Moon, 100, 13)}
	b := []ephemeris.Position{pos(ephemeris.Mars, 130, 0.5), pos(ephemeris.Venus, 190, 1.2)}

	ab, err := FindBetween(a, b, DefaultConfig())
	if err != nil {
		t.Fatalf("FindBetween(a, b) error: %v", err)
	}
	ba, err := FindBetween(b, a, DefaultConfig())
	if err != nil {
		t.Fatalf("FindBetween(b, a) error: %v", err)
	}
	if len(ab) != len(ba) {
		t.Fatalf("got %d vs %d aspects", len(ab), len(ba))
	}

	type pair struct {
		b1, b2 ephemeris.Body
		t      Type
	}
	seen := make(map[pair]float64, len(ab))
	for _, asp := range ab {
		seen[pair{asp.Body1, asp.Body2, asp.Type}] = asp.Orb
	}
	for _, asp := range ba {
		orb, ok := seen[pair{asp.Body2, asp.Body1, asp.Type}]
		if !ok {
			t.Errorf("aspect %s %s %s missing from the reversed result", asp.Body1, asp.Type, asp.Body2)
			continue
		}
		if math.Abs(orb-asp.Orb) > 1e-12 {
			t.Errorf("orb differs across directions: %v vs %v", orb, asp.Orb)
		}
	}
}

func TestInfluenceMonotonicInOrb(t *testing.T) {
	cfg := DefaultConfig()
	prev := math.Inf(1)
	for _, sep := range []float64{120, 121, 122.5, 124, 125.9} {
		aspects, err := FindNatal([]ephemeris.Position{
			pos(ephemeris.Sun, 0, 1),
			pos(ephemeris.Jupiter, sep, 0.08),
		}, cfg)
		if err != nil {
			t.Fatalf("FindNatal error: %v", err)
		}
		if len(aspects) != 1 || aspects[0].Type != Trine {
			t.Fatalf("separation %v: expected one trine, got %+v", sep, aspects)
		}
		if aspects[0].Influence >= prev {
			t.Errorf("influence not strictly decreasing at separation %v", sep)
		}
		prev = aspects[0].Influence
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"unknown type", Config{Types: []Type{"novile"}, Orbs: map[Type]float64{"novile": 2}}},
		{"missing orb", Config{Types: []Type{Trine}, Orbs: map[Type]float64{}}},
		{"zero orb", Config{Types: []Type{Trine}, Orbs: map[Type]float64{Trine: 0}}},
		{"negative orb", Config{Types: []Type{Trine}, Orbs: map[Type]float64{Trine: -1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := FindNatal(nil, c.cfg); !errors.Is(err, errors.ErrorTypeConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}
