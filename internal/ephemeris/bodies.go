package ephemeris

import (
	"math"

	"astro-server/internal/shared/errors"
)

// Body identifies a celestial body or calculated chart point.
type Body string

const (
	Sun       Body = "sun"
	Moon      Body = "moon"
	Mercury   Body = "mercury"
	Venus     Body = "venus"
	Mars      Body = "mars"
	Jupiter   Body = "jupiter"
	Saturn    Body = "saturn"
	Uranus    Body = "uranus"
	Neptune   Body = "neptune"
	Pluto     Body = "pluto"
	NorthNode Body = "north_node"
	SouthNode Body = "south_node"
	Ascendant Body = "ascendant"
	Midheaven Body = "mc"
)

// Planets lists the bodies the ephemeris computes directly, in
// traditional chart order.
var Planets = []Body{
	Sun, Moon, Mercury, Venus, Mars,
	Jupiter, Saturn, Uranus, Neptune, Pluto,
}

// PersonalPoints are the natal points that make an outer-body transit
// significant in forecasts.
var PersonalPoints = []Body{Sun, Moon, Ascendant}

var validBodies = map[Body]bool{
	Sun: true, Moon: true, Mercury: true, Venus: true, Mars: true,
	Jupiter: true, Saturn: true, Uranus: true, Neptune: true, Pluto: true,
	NorthNode: true, SouthNode: true, Ascendant: true, Midheaven: true,
}

// ParseBody validates a body name from a request.
func ParseBody(name string) (Body, error) {
	b := Body(name)
	if !validBodies[b] {
		return "", errors.Configurationf("unsupported body: %q", name)
	}
	return b, nil
}

// IsPoint reports whether a body is a chart-derived point rather than
// an orbiting body. Points have no ephemeris position of their own;
// they come from the house calculation.
func (b Body) IsPoint() bool {
	return b == Ascendant || b == Midheaven
}

// MeanDailyMotion returns the average apparent daily motion of a body
// in degrees per day. Transit search uses it to size its sampling
// interval; it is never used for actual positions.
func (b Body) MeanDailyMotion() float64 {
	switch b {
	case Sun:
		return 0.9856
	case Moon:
		return 13.176
	case Mercury:
		return 1.383
	case Venus:
		return 1.2
	case Mars:
		return 0.524
	case Jupiter:
		return 0.0831
	case Saturn:
		return 0.0334
	case Uranus:
		return 0.0117
	case Neptune:
		return 0.006
	case Pluto:
		return 0.004
	case NorthNode, SouthNode:
		return 0.053
	default:
		return 1.0
	}
}

// Sign is a zodiac sign, one of twelve fixed 30-degree bins.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"aries", "taurus", "gemini", "cancer",
	"leo", "virgo", "libra", "scorpio",
	"sagittarius", "capricorn", "aquarius", "pisces",
}

// String returns the lowercase wire name of the sign, matching the
// body and element naming used across all responses.
func (s Sign) String() string {
	if s < 0 || s > 11 {
		return "unknown"
	}
	return signNames[s]
}

// Element is one of the four classical elements.
type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

// Modality is one of the three sign qualities.
type Modality string

const (
	Cardinal Modality = "cardinal"
	Fixed    Modality = "fixed"
	Mutable  Modality = "mutable"
)

// Elements cycles fire, earth, air, water through the signs in order.
func (s Sign) Element() Element {
	switch s % 4 {
	case 0:
		return Fire
	case 1:
		return Earth
	case 2:
		return Air
	default:
		return Water
	}
}

// Modality cycles cardinal, fixed, mutable through the signs in order.
func (s Sign) Modality() Modality {
	switch s % 3 {
	case 0:
		return Cardinal
	case 1:
		return Fixed
	default:
		return Mutable
	}
}

// SignOf maps an ecliptic longitude to its zodiac sign.
func SignOf(longitude float64) Sign {
	return Sign(int(Normalize(longitude)/30) % 12)
}

// DegreeInSign returns the degree within the sign, in [0, 30).
func DegreeInSign(longitude float64) float64 {
	return math.Mod(Normalize(longitude), 30)
}

// Normalize reduces a longitude to [0, 360).
func Normalize(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Wrap180 reduces an angle difference to (-180, 180].
func Wrap180(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}
