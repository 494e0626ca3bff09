package progression

import (
	"context"
	"time"

	"astro-server/internal/chart"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

// TimelinePoint is one progressed body at one sample. Ingress marks
// the first sample after the body crossed into a new sign.
type TimelinePoint struct {
	Body      ephemeris.Body `json:"body"`
	Longitude float64        `json:"longitude"`
	Sign      string         `json:"sign"`
	Ingress   bool           `json:"ingress"`
}

// TimelineEntry is one sampled target date with its progressed
// positions.
type TimelineEntry struct {
	Date              time.Time         `json:"date"`
	ProgressedInstant ephemeris.Instant `json:"progressed_instant"`
	Points            []TimelinePoint   `json:"points"`
}

// timelineBodies are the default sampled points: the personal bodies,
// since progressed outer planets barely move on human timescales.
var timelineBodies = []ephemeris.Body{
	ephemeris.Sun, ephemeris.Moon, ephemeris.Mercury, ephemeris.Venus, ephemeris.Mars,
}

// Timeline samples progressed positions between two target dates at a
// fixed interval, flagging sign ingresses.
func (s *Service) Timeline(ctx context.Context, birth chart.BirthData, startDate, endDate string, intervalDays float64, method Method, bodyNames []string) ([]TimelineEntry, error) {
	if intervalDays <= 0 {
		return nil, errors.Validation("interval must be positive")
	}

	birthInstant, err := ephemeris.FromCivil(birth.Date, birth.Time, birth.UTCOffset)
	if err != nil {
		return nil, err
	}
	start, err := ephemeris.FromCivil(startDate, "", "")
	if err != nil {
		return nil, err
	}
	end, err := ephemeris.FromCivil(endDate, "", "")
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, errors.Validation("timeline start must precede end")
	}

	bodies := timelineBodies
	if len(bodyNames) > 0 {
		bodies = make([]ephemeris.Body, 0, len(bodyNames))
		for _, name := range bodyNames {
			b, err := ephemeris.ParseBody(name)
			if err != nil {
				return nil, err
			}
			if b.IsPoint() {
				return nil, errors.Configurationf("%s cannot be progressed on a timeline", b)
			}
			bodies = append(bodies, b)
		}
	}

	var out []TimelineEntry
	prevSigns := make(map[ephemeris.Body]ephemeris.Sign, len(bodies))
	for target := start; !end.Before(target); target = target.AddDays(intervalDays) {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapInternal("timeline sampling cancelled", err)
		}

		progressed, err := method.ProgressedInstant(birthInstant, target)
		if err != nil {
			return nil, err
		}

		entry := TimelineEntry{
			Date:              target.UTC,
			ProgressedInstant: progressed,
			Points:            make([]TimelinePoint, 0, len(bodies)),
		}
		for _, b := range bodies {
			pos, err := s.provider.Position(b, progressed.JD)
			if err != nil {
				return nil, err
			}
			sign := ephemeris.SignOf(pos.Longitude)
			prev, seen := prevSigns[b]
			entry.Points = append(entry.Points, TimelinePoint{
				Body:      b,
				Longitude: pos.Longitude,
				Sign:      sign.String(),
				Ingress:   seen && sign != prev,
			})
			prevSigns[b] = sign
		}
		out = append(out, entry)
	}
	return out, nil
}
