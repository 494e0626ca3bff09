package aspect

import (
	"math"
	"sort"

	"astro-server/internal/ephemeris"
)

// Aspect is one detected angular relationship. Separation is the
// signed difference lon1-lon2 wrapped to (-180, 180]; Orb is the
// unsigned distance from the exact angle.
//
// Influence is 1 - orb/maxOrb, a documented design choice rather than
// an astronomical quantity: it is 1 at exactness and falls linearly to
// 0 at the configured maximum orb.
type Aspect struct {
	Body1      ephemeris.Body `json:"body1"`
	Body2      ephemeris.Body `json:"body2"`
	Type       Type           `json:"type"`
	Separation float64        `json:"separation"`
	Orb        float64        `json:"orb"`
	Applying   bool           `json:"applying"`
	Influence  float64        `json:"influence"`
}

// FindNatal detects aspects among the bodies of a single chart. Each
// unordered pair is considered once and never against itself.
func FindNatal(positions []ephemeris.Position, cfg Config) ([]Aspect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []Aspect
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if a, ok := match(positions[i], positions[j], cfg); ok {
				out = append(out, a)
			}
		}
	}
	sortAspects(out)
	return out, nil
}

// FindBetween detects aspects from each body of chart A to each body
// of chart B, for synastry and transit comparisons.
func FindBetween(a, b []ephemeris.Position, cfg Config) ([]Aspect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []Aspect
	for _, pa := range a {
		for _, pb := range b {
			if asp, ok := match(pa, pb, cfg); ok {
				out = append(out, asp)
			}
		}
	}
	sortAspects(out)
	return out, nil
}

// match tests one body pair against every configured type and keeps
// the tightest-orb winner, breaking orb ties by type precedence.
func match(p1, p2 ephemeris.Position, cfg Config) (Aspect, bool) {
	delta := ephemeris.Wrap180(p1.Longitude - p2.Longitude)
	d := math.Abs(delta)

	best := Aspect{Orb: math.Inf(1)}
	found := false
	for _, t := range cfg.Types {
		orb := math.Abs(d - t.Angle())
		if orb > cfg.Orb(t) {
			continue
		}
		if orb < best.Orb || (orb == best.Orb && precedence[t] < precedence[best.Type]) {
			best = Aspect{
				Body1:      p1.Body,
				Body2:      p2.Body,
				Type:       t,
				Separation: delta,
				Orb:        orb,
				Applying:   applying(delta, d, t.Angle(), p1.Speed, p2.Speed),
				Influence:  influence(orb, cfg.Orb(t)),
			}
			found = true
		}
	}
	return best, found
}

// applying reports whether the orb is currently shrinking. The rate of
// change of the separation d is the relative speed projected onto the
// direction of delta; the orb shrinks when that rate moves d toward
// the exact angle. Zero relative speed counts as separating.
func applying(delta, d, exact, s1, s2 float64) bool {
	rel := s1 - s2
	if delta < 0 {
		rel = -rel
	}
	orbRate := rel
	if d < exact {
		orbRate = -rel
	}
	return orbRate < 0
}

func influence(orb, maxOrb float64) float64 {
	v := 1 - orb/maxOrb
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortAspects orders results by tightness, then by type precedence,
// then by body names, so responses are stable.
func sortAspects(aspects []Aspect) {
	sort.Slice(aspects, func(i, j int) bool {
		a, b := aspects[i], aspects[j]
		if a.Orb != b.Orb {
			return a.Orb < b.Orb
		}
		if precedence[a.Type] != precedence[b.Type] {
			return precedence[a.Type] < precedence[b.Type]
		}
		if a.Body1 != b.Body1 {
			return a.Body1 < b.Body1
		}
		return a.Body2 < b.Body2
	})
}
