package chart

import (
	"time"

	"astro-server/internal/aspect"
	"astro-server/internal/ephemeris"
)

// BirthData is the raw input a chart is computed from. Time may be
// empty when the birth time is unknown; noon is assumed and the chart
// is marked accordingly.
type BirthData struct {
	Date         string  `json:"date"`
	Time         string  `json:"time,omitempty"`
	UTCOffset    string  `json:"utc_offset,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name,omitempty"`
}

// Options select what a chart computation includes.
type Options struct {
	HouseSystem string         `json:"house_system,omitempty"`
	Bodies      []string       `json:"bodies,omitempty"`
	WithAspects bool           `json:"with_aspects,omitempty"`
	WithBalance bool           `json:"with_balance,omitempty"`
	AspectCfg   *aspect.Config `json:"aspect_config,omitempty"`
}

// Placement is one body located in the zodiac and the houses.
type Placement struct {
	Body         ephemeris.Body `json:"body"`
	Longitude    float64        `json:"longitude"`
	Latitude     float64        `json:"latitude"`
	Speed        float64        `json:"speed"`
	Retrograde   bool           `json:"retrograde"`
	Sign         string         `json:"sign"`
	DegreeInSign float64        `json:"degree_in_sign"`
	House        int            `json:"house"`
}

// Cusp is one house boundary.
type Cusp struct {
	House     int     `json:"house"`
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
}

// Balance aggregates element and modality tallies across the included
// bodies, each weighted equally and normalized to sum to 100.
type Balance struct {
	Elements         map[ephemeris.Element]float64  `json:"elements"`
	Modalities       map[ephemeris.Modality]float64 `json:"modalities"`
	DominantElement  ephemeris.Element              `json:"dominant_element"`
	DominantModality ephemeris.Modality             `json:"dominant_modality"`
}

// Chart is a complete computed birth chart. Charts are immutable once
// built, which is what makes them safe to cache forever.
type Chart struct {
	ID          string            `json:"id,omitempty"`
	Instant     ephemeris.Instant `json:"instant"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Location    string            `json:"location,omitempty"`
	HouseSystem string            `json:"house_system"`
	Placements  []Placement       `json:"placements"`
	Cusps       []Cusp            `json:"cusps"`
	Ascendant   float64           `json:"ascendant"`
	Midheaven   float64           `json:"midheaven"`
	Aspects     []aspect.Aspect   `json:"aspects,omitempty"`
	Balance     *Balance          `json:"balance,omitempty"`
	CacheKey    string            `json:"cache_key,omitempty"`
	// CreatedAt is set by the archive on save; a freshly computed
	// chart carries no timestamp so identical inputs serialize
	// identically.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Summary is the condensed view served by the summary endpoint.
type Summary struct {
	SunSign          string             `json:"sun_sign"`
	MoonSign         string             `json:"moon_sign"`
	AscendantSign    string             `json:"ascendant_sign"`
	DominantElement  ephemeris.Element  `json:"dominant_element"`
	DominantModality ephemeris.Modality `json:"dominant_modality"`
	TimeKnown        bool               `json:"time_known"`
}

// Placement lookup by body, nil when the body was not included.
func (c *Chart) PlacementOf(b ephemeris.Body) *Placement {
	for i := range c.Placements {
		if c.Placements[i].Body == b {
			return &c.Placements[i]
		}
	}
	return nil
}
