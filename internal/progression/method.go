package progression

import (
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

// Method names an elapsed-time to progressed-time mapping. There is no
// default: callers must pick one explicitly.
type Method string

const (
	// Secondary progresses one ephemeris day per elapsed year.
	Secondary Method = "secondary"
	// Tertiary progresses one lunar month per elapsed year.
	Tertiary Method = "tertiary"
	// Minor progresses one lunar month per elapsed month.
	Minor Method = "minor"
	// SolarArc shifts every natal point by the secondarily progressed
	// sun's arc instead of progressing each body on its own.
	SolarArc Method = "solar_arc"
)

const (
	yearDays       = 365.25
	lunarMonthDays = 27.321661
	meanMonthDays  = yearDays / 12
)

// ParseMethod validates a method name. An empty or unknown name is a
// configuration error, never a silent fallback.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case Secondary, Tertiary, Minor, SolarArc:
		return Method(name), nil
	case "":
		return "", errors.Configuration("progression method is required: secondary, tertiary, minor or solar_arc")
	default:
		return "", errors.Configurationf("unknown progression method: %q", name)
	}
}

// ProgressedInstant maps a birth instant and a target instant onto the
// progressed ephemeris instant for the method. Solar arc uses the
// secondary mapping for its sun; the chart-level shift happens in the
// service.
func (m Method) ProgressedInstant(birth, target ephemeris.Instant) (ephemeris.Instant, error) {
	elapsedDays := target.JD - birth.JD
	if elapsedDays < 0 {
		return ephemeris.Instant{}, errors.Validation("target date precedes the birth date")
	}

	var offset float64
	switch m {
	case Secondary, SolarArc:
		offset = elapsedDays / yearDays
	case Tertiary:
		offset = elapsedDays / yearDays * lunarMonthDays
	case Minor:
		offset = elapsedDays / meanMonthDays * lunarMonthDays
	default:
		return ephemeris.Instant{}, errors.Configurationf("unknown progression method: %q", m)
	}

	out := birth.AddDays(offset)
	out.TimeKnown = birth.TimeKnown
	return out, nil
}
