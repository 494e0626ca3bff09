package ephemeris

import (
	"math"
	"testing"
)

func TestParseBody(t *testing.T) {
	b, err := ParseBody("jupiter")
	if err != nil {
		t.Fatalf("ParseBody(jupiter) error: %v", err)
	}
	if b != Jupiter {
		t.Errorf("got %s, want jupiter", b)
	}

	if _, err := ParseBody("vulcan"); err == nil {
		t.Error("expected error for unknown body")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{365, 5},
		{-10, 350},
		{-370, 350},
		{720.5, 0.5},
	}
	for _, c := range cases {
		if got := Normalize(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestWrap180(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{181, -179},
		{-180, 180},
		{359, -1},
		{-359, 1},
	}
	for _, c := range cases {
		if got := Wrap180(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Wrap180(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSignOf(t *testing.T) {
	cases := []struct {
		lon  float64
		want Sign
	}{
		{0, Aries},
		{29.999, Aries},
		{30, Taurus},
		{84.3, Gemini},
		{359.9, Pisces},
		{360, Aries},
	}
	for _, c := range cases {
		if got := SignOf(c.lon); got != c.want {
			t.Errorf("SignOf(%v) = %s, want %s", c.lon, got, c.want)
		}
	}
}

func TestDegreeInSign(t *testing.T) {
	if got := DegreeInSign(84.3); math.Abs(got-24.3) > 1e-9 {
		t.Errorf("DegreeInSign(84.3) = %v, want 24.3", got)
	}
}

func TestSignElementModality(t *testing.T) {
	cases := []struct {
		sign     Sign
		element  Element
		modality Modality
	}{
		{Aries, Fire, Cardinal},
		{Taurus, Earth, Fixed},
		{Gemini, Air, Mutable},
		{Cancer, Water, Cardinal},
		{Scorpio, Water, Fixed},
		{Pisces, Water, Mutable},
	}
	for _, c := range cases {
		if got := c.sign.Element(); got != c.element {
			t.Errorf("%s element = %s, want %s", c.sign, got, c.element)
		}
		if got := c.sign.Modality(); got != c.modality {
			t.Errorf("%s modality = %s, want %s", c.sign, got, c.modality)
		}
	}
}
