package ephemeris

import (
	"math"
	"testing"
	"time"

	"astro-server/internal/shared/errors"
)

func testProvider() *AnalyticProvider {
	return NewAnalyticProvider(1800, 2200)
}

func jdOf(y int, m time.Month, d, hh, mm int) float64 {
	return JulianDay(time.Date(y, m, d, hh, mm, 0, 0, time.UTC))
}

func TestSunSignMidJune(t *testing.T) {
	p := testProvider()
	pos, err := p.Position(Sun, jdOf(1990, time.June, 15, 21, 25))
	if err != nil {
		t.Fatalf("Position error: %v", err)
	}
	if got := SignOf(pos.Longitude); got != Gemini {
		t.Errorf("sun sign = %s (lon %.4f), want gemini", got, pos.Longitude)
	}
	if pos.Retrograde {
		t.Error("the sun is never retrograde")
	}
	if pos.Speed < 0.94 || pos.Speed > 1.03 {
		t.Errorf("sun speed = %.4f deg/day, want ~0.9856", pos.Speed)
	}
	if pos.Distance < 0.98 || pos.Distance > 1.02 {
		t.Errorf("sun distance = %.4f AU, want ~1", pos.Distance)
	}
}

func TestSunSignNewYear(t *testing.T) {
	p := testProvider()
	pos, err := p.Position(Sun, jdOf(2000, time.January, 1, 12, 0))
	if err != nil {
		t.Fatalf("Position error: %v", err)
	}
	if got := SignOf(pos.Longitude); got != Capricorn {
		t.Errorf("sun sign = %s (lon %.4f), want capricorn", got, pos.Longitude)
	}
}

func TestMoonSpeedRange(t *testing.T) {
	p := testProvider()
	pos, err := p.Position(Moon, jdOf(2025, time.March, 10, 0, 0))
	if err != nil {
		t.Fatalf("Position error: %v", err)
	}
	// the moon's daily motion varies between roughly 11.7 and 15.4
	if pos.Speed < 11.0 || pos.Speed > 16.0 {
		t.Errorf("moon speed = %.4f deg/day, outside plausible range", pos.Speed)
	}
	if math.Abs(pos.Latitude) > 5.4 {
		t.Errorf("moon latitude = %.4f, exceeds orbital inclination bound", pos.Latitude)
	}
}

func TestNodesOpposeAndRegress(t *testing.T) {
	p := testProvider()
	jd := jdOf(2025, time.March, 10, 0, 0)
	north, err := p.Position(NorthNode, jd)
	if err != nil {
		t.Fatalf("north node error: %v", err)
	}
	south, err := p.Position(SouthNode, jd)
	if err != nil {
		t.Fatalf("south node error: %v", err)
	}
	if diff := math.Abs(Wrap180(south.Longitude - north.Longitude - 180)); diff > 1e-9 {
		t.Errorf("south node is %.6f deg from opposing the north node", diff)
	}
	if !north.Retrograde || north.Speed >= 0 {
		t.Error("the mean node should regress")
	}
}

func TestPlanetSpeedsNearMeanMotion(t *testing.T) {
	p := testProvider()
	jd := jdOf(2010, time.September, 1, 0, 0)
	for _, b := range []Body{Jupiter, Saturn, Uranus, Neptune, Pluto} {
		pos, err := p.Position(b, jd)
		if err != nil {
			t.Fatalf("Position(%s) error: %v", b, err)
		}
		// geocentric speeds swing around the mean with the earth's motion
		if math.Abs(pos.Speed) > 4*b.MeanDailyMotion()+0.25 {
			t.Errorf("%s speed = %.4f deg/day, implausibly fast", b, pos.Speed)
		}
	}
}

func TestPositionsAreDeterministic(t *testing.T) {
	p := testProvider()
	jd := jdOf(1975, time.November, 2, 6, 30)
	for _, b := range Planets {
		first, err := p.Position(b, jd)
		if err != nil {
			t.Fatalf("Position(%s) error: %v", b, err)
		}
		second, _ := p.Position(b, jd)
		if first != second {
			t.Errorf("%s position differs between identical calls", b)
		}
		if first.Longitude < 0 || first.Longitude >= 360 {
			t.Errorf("%s longitude %.4f not normalized", b, first.Longitude)
		}
	}
}

func TestPositionRejectsOutOfRange(t *testing.T) {
	p := testProvider()
	_, err := p.Position(Sun, jdOf(1750, time.January, 1, 0, 0))
	if !errors.Is(err, errors.ErrorTypeEphemerisRange) {
		t.Errorf("expected ephemeris_range error, got %v", err)
	}
	_, err = p.Position(Sun, jdOf(2300, time.January, 1, 0, 0))
	if !errors.Is(err, errors.ErrorTypeEphemerisRange) {
		t.Errorf("expected ephemeris_range error, got %v", err)
	}
}

func TestPositionRejectsDerivedPoints(t *testing.T) {
	p := testProvider()
	for _, b := range []Body{Ascendant, Midheaven} {
		_, err := p.Position(b, jdOf(2000, time.January, 1, 0, 0))
		if !errors.Is(err, errors.ErrorTypeConfiguration) {
			t.Errorf("Position(%s): expected configuration error, got %v", b, err)
		}
	}
}
