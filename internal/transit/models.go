package transit

import (
	"time"

	"astro-server/internal/aspect"
	"astro-server/internal/ephemeris"
)

// Significance grades a transit event for the forecast timeline.
type Significance string

const (
	// Major marks an outer body conjunct or opposite a personal point.
	Major Significance = "major"
	// Significant marks any other hard aspect from an outer body to a
	// personal point.
	Significant Significance = "significant"
	// Routine covers everything else.
	Routine Significance = "routine"
)

// Window is the span during which an event's orb stays inside the
// configured maximum.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Event is one transiting-body/natal-body aspect with its moment of
// exactness.
type Event struct {
	Transiting   ephemeris.Body `json:"transiting"`
	Natal        ephemeris.Body `json:"natal"`
	Type         aspect.Type    `json:"type"`
	ExactAt      time.Time      `json:"exact_at"`
	JulianDay    float64        `json:"julian_day"`
	Orb          float64        `json:"orb"`
	Window       *Window        `json:"window,omitempty"`
	Significance Significance   `json:"significance,omitempty"`
}

// Forecast is the five-year projection: the full timeline plus the
// events worth surfacing on their own.
type Forecast struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Timeline   []Event   `json:"timeline"`
	Highlights []Event   `json:"highlights"`
}
