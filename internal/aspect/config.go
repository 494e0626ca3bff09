package aspect

import (
	"astro-server/internal/shared/errors"
)

// Type names an angular relationship between two bodies.
type Type string

const (
	Conjunction    Type = "conjunction"
	Opposition     Type = "opposition"
	Trine          Type = "trine"
	Square         Type = "square"
	Sextile        Type = "sextile"
	Quincunx       Type = "quincunx"
	SemiSextile    Type = "semi_sextile"
	SemiSquare     Type = "semi_square"
	Sesquiquadrate Type = "sesquiquadrate"
	Quintile       Type = "quintile"
)

// angles maps each aspect type to its exact angle in degrees.
var angles = map[Type]float64{
	Conjunction:    0,
	Opposition:     180,
	Trine:          120,
	Square:         90,
	Sextile:        60,
	Quincunx:       150,
	SemiSextile:    30,
	SemiSquare:     45,
	Sesquiquadrate: 135,
	Quintile:       72,
}

// precedence breaks orb ties: when two types match at the same orb the
// lower rank wins. Majors come first in the classical order, minors
// after.
var precedence = map[Type]int{
	Conjunction:    0,
	Opposition:     1,
	Trine:          2,
	Square:         3,
	Sextile:        4,
	Quincunx:       5,
	SemiSextile:    6,
	SemiSquare:     7,
	Sesquiquadrate: 8,
	Quintile:       9,
}

// Angle returns the exact angle of the aspect type in degrees.
func (t Type) Angle() float64 { return angles[t] }

// Config is the explicit aspect configuration passed into every
// detection call. There are no hidden defaults inside the engine:
// callers that want the standard set use DefaultConfig.
type Config struct {
	Types []Type           `json:"types"`
	Orbs  map[Type]float64 `json:"orbs"`
}

// DefaultConfig returns the classical natal orb table: wide orbs for
// the majors, tight orbs for the minors.
func DefaultConfig() Config {
	return Config{
		Types: []Type{
			Conjunction, Opposition, Trine, Square, Sextile,
			Quincunx, SemiSextile, SemiSquare, Sesquiquadrate, Quintile,
		},
		Orbs: map[Type]float64{
			Conjunction:    8,
			Opposition:     8,
			Trine:          6,
			Square:         6,
			Sextile:        4,
			Quincunx:       3,
			SemiSextile:    2,
			SemiSquare:     2,
			Sesquiquadrate: 2,
			Quintile:       2,
		},
	}
}

// TransitConfig returns the tight orb table used for transit searches,
// majors only.
func TransitConfig() Config {
	return Config{
		Types: []Type{Conjunction, Opposition, Trine, Square, Sextile},
		Orbs: map[Type]float64{
			Conjunction: 1.0,
			Opposition:  1.0,
			Trine:       0.8,
			Square:      0.8,
			Sextile:     0.6,
		},
	}
}

// Validate rejects unknown aspect types and non-positive orbs.
func (c Config) Validate() error {
	if len(c.Types) == 0 {
		return errors.Configuration("aspect config needs at least one aspect type")
	}
	for _, t := range c.Types {
		if _, ok := angles[t]; !ok {
			return errors.Configurationf("unknown aspect type: %q", t)
		}
		orb, ok := c.Orbs[t]
		if !ok {
			return errors.Configurationf("no orb configured for aspect type %q", t)
		}
		if orb <= 0 {
			return errors.Configurationf("orb for %q must be positive, got %v", t, orb)
		}
	}
	return nil
}

// Orb returns the configured maximum orb for a type.
func (c Config) Orb(t Type) float64 { return c.Orbs[t] }
