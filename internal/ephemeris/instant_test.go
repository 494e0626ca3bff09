package ephemeris

import (
	"math"
	"testing"
	"time"
)

func TestJulianDayJ2000(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := JulianDay(j2000); math.Abs(got-2451545.0) > 1e-6 {
		t.Errorf("JulianDay(J2000) = %v, want 2451545.0", got)
	}
}

func TestFromJDRoundTrip(t *testing.T) {
	orig := time.Date(1990, 6, 15, 21, 25, 0, 0, time.UTC)
	inst := FromTime(orig)
	back := FromJD(inst.JD)
	if diff := back.UTC.Sub(orig); diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("round trip drifted by %v", diff)
	}
}

func TestFromCivilWithOffset(t *testing.T) {
	inst, err := FromCivil("1990-06-15", "14:25:00", "-07:00")
	if err != nil {
		t.Fatalf("FromCivil error: %v", err)
	}
	want := time.Date(1990, 6, 15, 21, 25, 0, 0, time.UTC)
	if !inst.UTC.Equal(want) {
		t.Errorf("UTC = %v, want %v", inst.UTC, want)
	}
	if !inst.TimeKnown {
		t.Error("TimeKnown should be true when a clock is given")
	}
}

func TestFromCivilUnknownTimeDefaultsToNoon(t *testing.T) {
	inst, err := FromCivil("1990-06-15", "", "")
	if err != nil {
		t.Fatalf("FromCivil error: %v", err)
	}
	if inst.UTC.Hour() != 12 || inst.UTC.Minute() != 0 {
		t.Errorf("UTC = %v, want 12:00 noon", inst.UTC)
	}
	if inst.TimeKnown {
		t.Error("TimeKnown should be false when no clock is given")
	}
}

func TestFromCivilShortClock(t *testing.T) {
	inst, err := FromCivil("1990-06-15", "14:25", "")
	if err != nil {
		t.Fatalf("FromCivil error: %v", err)
	}
	if inst.UTC.Hour() != 14 || inst.UTC.Minute() != 25 {
		t.Errorf("UTC = %v, want 14:25", inst.UTC)
	}
}

func TestFromCivilRejectsBadInput(t *testing.T) {
	cases := []struct {
		name                string
		date, clock, offset string
	}{
		{"empty date", "", "12:00:00", ""},
		{"bad date", "1990-13-40", "12:00:00", ""},
		{"bad clock", "1990-06-15", "25:00:00", ""},
		{"bad offset", "1990-06-15", "12:00:00", "UTC+7"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := FromCivil(c.date, c.clock, c.offset); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAddDaysAndBefore(t *testing.T) {
	a := FromTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := a.AddDays(1.5)
	if !a.Before(b) {
		t.Error("a should precede a.AddDays(1.5)")
	}
	want := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	if diff := b.UTC.Sub(want); diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("AddDays(1.5) = %v, want %v", b.UTC, want)
	}
}
