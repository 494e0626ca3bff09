package ephemeris

import "astro-server/internal/shared/errors"

// Position is a body's ecliptic position at one instant.
type Position struct {
	Body       Body    `json:"body"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Distance   float64 `json:"distance"`
	Speed      float64 `json:"speed"`
	Retrograde bool    `json:"retrograde"`
}

// HouseSystem selects a convention for dividing the ecliptic into houses.
type HouseSystem string

const (
	Placidus  HouseSystem = "placidus"
	Koch      HouseSystem = "koch"
	Porphyry  HouseSystem = "porphyry"
	Equal     HouseSystem = "equal"
	WholeSign HouseSystem = "whole_sign"
)

var validHouseSystems = map[HouseSystem]bool{
	Placidus: true, Koch: true, Porphyry: true, Equal: true, WholeSign: true,
}

// ParseHouseSystem validates a house system name from a request.
func ParseHouseSystem(name string) (HouseSystem, error) {
	if name == "" {
		return Placidus, nil
	}
	hs := HouseSystem(name)
	if !validHouseSystems[hs] {
		return "", errors.Configurationf("unsupported house system: %q", name)
	}
	return hs, nil
}

// quadrant systems split houses by diurnal arcs and stop resolving
// inside the polar circles.
func (hs HouseSystem) quadrant() bool {
	return hs == Placidus || hs == Koch || hs == Porphyry
}

// HouseCusps holds the twelve cusp longitudes plus the angles.
// Cusps[0] is house 1. It equals the Ascendant in every system except
// whole sign, where it is the start of the Ascendant's sign.
type HouseCusps struct {
	System    HouseSystem `json:"system"`
	Cusps     [12]float64 `json:"cusps"`
	Ascendant float64     `json:"ascendant"`
	Midheaven float64     `json:"midheaven"`
}

// Provider is the ephemeris oracle. Implementations must be
// deterministic: the same inputs always produce the same outputs.
type Provider interface {
	// Position returns a body's ecliptic position at a Julian Day.
	Position(body Body, jd float64) (Position, error)
	// Houses returns house cusps for a Julian Day, geographic location
	// and house system.
	Houses(jd float64, latitude, longitude float64, system HouseSystem) (HouseCusps, error)
}
