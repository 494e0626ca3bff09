package ephemeris

import (
	"time"

	"astro-server/internal/shared/errors"
)

// unixEpochJD is the Julian Day of 1970-01-01T00:00:00Z.
const unixEpochJD = 2440587.5

// Instant is a civil moment resolved onto the continuous Julian Day
// scale. Instants compare monotonically with UTC order.
type Instant struct {
	JD        float64   `json:"julian_day"`
	UTC       time.Time `json:"utc"`
	TimeKnown bool      `json:"time_known"`
}

// JulianDay converts a time to its Julian Day number.
func JulianDay(t time.Time) float64 {
	return float64(t.UTC().UnixMilli())/86400000.0 + unixEpochJD
}

// FromTime builds an Instant from an absolute time.
func FromTime(t time.Time) Instant {
	return Instant{JD: JulianDay(t), UTC: t.UTC(), TimeKnown: true}
}

// FromJD builds an Instant from a Julian Day number.
func FromJD(jd float64) Instant {
	ms := int64((jd - unixEpochJD) * 86400000.0)
	return Instant{JD: jd, UTC: time.UnixMilli(ms).UTC(), TimeKnown: true}
}

// FromCivil resolves a civil date, optional time-of-day and UTC offset
// into an Instant. An empty clock means the birth time is unknown and
// noon is assumed, following the convention of the chart endpoints.
// The offset has the form "+HH:MM" or "-HH:MM"; empty means UTC.
func FromCivil(date, clock, offset string) (Instant, error) {
	if date == "" {
		return Instant{}, errors.Validation("date is required")
	}

	timeKnown := clock != ""
	switch len(clock) {
	case 0:
		clock = "12:00:00"
	case 5: // HH:MM
		clock += ":00"
	}

	loc := time.UTC
	if offset != "" {
		parsed, err := time.Parse("-07:00", offset)
		if err != nil {
			return Instant{}, errors.Validationf("invalid UTC offset %q, expected +HH:MM or -HH:MM", offset)
		}
		loc = parsed.Location()
	}

	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, loc)
	if err != nil {
		return Instant{}, errors.WrapValidation("invalid date/time, expected YYYY-MM-DD and HH:MM:SS", err)
	}

	inst := FromTime(t)
	inst.TimeKnown = timeKnown
	return inst, nil
}

// AddDays returns the Instant shifted by a number of days on the
// ephemeris time scale.
func (i Instant) AddDays(days float64) Instant {
	out := FromJD(i.JD + days)
	out.TimeKnown = i.TimeKnown
	return out
}

// Before reports whether i precedes other in UTC order.
func (i Instant) Before(other Instant) bool {
	return i.JD < other.JD
}
