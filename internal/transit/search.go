package transit

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"astro-server/internal/aspect"
	"astro-server/internal/ephemeris"
	"astro-server/internal/shared/errors"
)

const (
	// bisection stops when the orb is inside this tolerance, in degrees
	exactTolerance = 0.01
	// refinement is bounded so pathological orb configurations still
	// terminate
	maxBisections = 64

	minStepDays = 1.0 / 24 // one hour
	maxStepDays = 7
)

// Search runs transit detection against a fixed set of natal
// positions. Searches are CPU-bound; per-body scans fan out over a
// small worker pool so long periods do not serialize.
type Search struct {
	provider ephemeris.Provider
	logger   *slog.Logger
	workers  int
}

func NewSearch(provider ephemeris.Provider, logger *slog.Logger) *Search {
	logger.Debug("Initializing transit search")

	return &Search{
		provider: provider,
		logger:   logger,
		workers:  runtime.NumCPU(),
	}
}

// ForDate returns the aspects the sky at one instant forms against a
// natal chart.
func (s *Search) ForDate(ctx context.Context, natal []ephemeris.Position, at ephemeris.Instant, bodies []ephemeris.Body, cfg aspect.Config) ([]aspect.Aspect, error) {
	if len(bodies) == 0 {
		bodies = ephemeris.Planets
	}
	transiting := make([]ephemeris.Position, 0, len(bodies))
	for _, b := range bodies {
		pos, err := s.provider.Position(b, at.JD)
		if err != nil {
			return nil, err
		}
		transiting = append(transiting, pos)
	}
	return aspect.FindBetween(transiting, natal, cfg)
}

// Period finds every moment in [start, end] where a transiting body
// forms an exact configured aspect to a natal position. A pair that
// never reaches exactness simply contributes nothing; that is not an
// error.
func (s *Search) Period(ctx context.Context, natal []ephemeris.Position, start, end ephemeris.Instant, bodies []ephemeris.Body, cfg aspect.Config) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, errors.Validation("period start must precede end")
	}
	if len(bodies) == 0 {
		bodies = ephemeris.Planets
	}

	logger := s.logger.With("component", "transit_search", "operation", "period",
		"bodies", len(bodies), "days", end.JD-start.JD)
	logger.Debug("Scanning period")

	jobs := make(chan ephemeris.Body)
	results := make(chan []Event, len(bodies))
	scanErrs := make(chan error, len(bodies))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for body := range jobs {
				events, err := s.scanBody(ctx, body, natal, start, end, cfg)
				if err != nil {
					scanErrs <- err
					continue
				}
				results <- events
			}
		}()
	}

	for _, b := range bodies {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
	close(results)
	close(scanErrs)

	if err := <-scanErrs; err != nil {
		return nil, err
	}

	var out []Event
	for events := range results {
		out = append(out, events...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JulianDay != out[j].JulianDay {
			return out[i].JulianDay < out[j].JulianDay
		}
		if out[i].Transiting != out[j].Transiting {
			return out[i].Transiting < out[j].Transiting
		}
		return out[i].Natal < out[j].Natal
	})

	logger.Info("Period scan complete", "events", len(out))
	return out, nil
}

// scanBody walks one transiting body across the period, bracketing
// sign changes of separation-minus-exact-angle for every natal target
// and aspect type, then refining each bracket by bisection.
func (s *Search) scanBody(ctx context.Context, body ephemeris.Body, natal []ephemeris.Position, start, end ephemeris.Instant, cfg aspect.Config) ([]Event, error) {
	step := coarseStep(body)

	var out []Event
	for _, target := range natal {
		for _, t := range cfg.Types {
			events, err := s.scanPair(ctx, body, target, t, cfg.Orb(t), start.JD, end.JD, step)
			if err != nil {
				return nil, err
			}
			out = append(out, events...)
		}
	}
	return out, nil
}

// coarseStep sizes the sampling interval inversely to the body's mean
// daily motion so a crossing cannot be skipped between samples.
func coarseStep(body ephemeris.Body) float64 {
	motion := body.MeanDailyMotion()
	step := 1.0 / motion
	if step < minStepDays {
		return minStepDays
	}
	if step > maxStepDays {
		return maxStepDays
	}
	return step
}

// scanPair brackets zero crossings of the signed offset from each
// exactness branch. An aspect of angle theta is exact at separation
// +theta or -theta, so both branches are scanned; they coincide for
// conjunctions and oppositions.
func (s *Search) scanPair(ctx context.Context, body ephemeris.Body, target ephemeris.Position, t aspect.Type, maxOrb float64, startJD, endJD, step float64) ([]Event, error) {
	exact := t.Angle()
	offsets := []float64{exact}
	if exact != 0 && exact != 180 {
		offsets = append(offsets, -exact)
	}

	var out []Event
	for _, offset := range offsets {
		f := func(jd float64) (float64, error) {
			pos, err := s.provider.Position(body, jd)
			if err != nil {
				return 0, err
			}
			return ephemeris.Wrap180(pos.Longitude - target.Longitude - offset), nil
		}
		events, err := s.scanBranch(ctx, f, body, target.Body, t, maxOrb, startJD, endJD, step)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
	}
	return out, nil
}

func (s *Search) scanBranch(ctx context.Context, f func(float64) (float64, error), body, natal ephemeris.Body, t aspect.Type, maxOrb, startJD, endJD, step float64) ([]Event, error) {
	prevJD := startJD
	prevF, err := f(prevJD)
	if err != nil {
		return nil, err
	}

	var out []Event
	for jd := startJD + step; prevJD < endJD; jd += step {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapInternal("transit scan cancelled", err)
		}
		if jd > endJD {
			jd = endJD
		}
		curF, err := f(jd)
		if err != nil {
			return nil, err
		}
		// a sample landing exactly on zero belongs to the bracket it
		// opens, except at the period end where no further bracket
		// follows
		if crosses(prevF, curF) || (curF == 0 && jd == endJD) {
			var exactJD, orb float64
			switch {
			case prevF == 0:
				exactJD, orb = prevJD, 0
			case curF == 0:
				exactJD, orb = jd, 0
			default:
				exactJD, orb, err = s.refine(f, prevJD, jd, prevF)
				if err != nil {
					return nil, err
				}
			}
			if orb <= exactTolerance {
				window, err := s.window(f, exactJD, maxOrb, step, startJD, endJD)
				if err != nil {
					return nil, err
				}
				out = append(out, Event{
					Transiting: body,
					Natal:      natal,
					Type:       t,
					ExactAt:    ephemeris.FromJD(exactJD).UTC,
					JulianDay:  exactJD,
					Orb:        orb,
					Window:     window,
				})
			}
		}
		if jd == endJD {
			break
		}
		prevJD, prevF = jd, curF
	}
	return out, nil
}

// crosses detects a genuine sign change. A jump near the 180/-180
// seam of the wrapped offset also flips sign but is not a crossing,
// so large jumps are rejected. A zero only counts at the opening
// sample; the closing bracket would report the same exactness twice.
func crosses(a, b float64) bool {
	if math.Abs(a-b) >= 180 {
		return false
	}
	if a == 0 {
		return true
	}
	if b == 0 {
		return false
	}
	return (a < 0) != (b < 0)
}

// refine narrows a bracket [lo, hi] with a known sign change down to
// the moment of exactness by bisection.
func (s *Search) refine(f func(float64) (float64, error), lo, hi, fLo float64) (float64, float64, error) {
	for i := 0; i < maxBisections; i++ {
		mid := (lo + hi) / 2
		fMid, err := f(mid)
		if err != nil {
			return 0, 0, err
		}
		if math.Abs(fMid) <= exactTolerance {
			return mid, math.Abs(fMid), nil
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	mid := (lo + hi) / 2
	fMid, err := f(mid)
	if err != nil {
		return 0, 0, err
	}
	return mid, math.Abs(fMid), nil
}

// window walks outward from the exact moment to find the span during
// which the orb stays inside the configured maximum.
func (s *Search) window(f func(float64) (float64, error), exactJD, maxOrb, step, startJD, endJD float64) (*Window, error) {
	edge := func(dir float64, bound float64) (float64, error) {
		jd := exactJD
		for i := 0; i < 1000; i++ {
			next := jd + dir*step
			if (dir < 0 && next < bound) || (dir > 0 && next > bound) {
				return bound, nil
			}
			v, err := f(next)
			if err != nil {
				return 0, err
			}
			if math.Abs(v) > maxOrb {
				return next, nil
			}
			jd = next
		}
		return jd, nil
	}

	startEdge, err := edge(-1, startJD)
	if err != nil {
		return nil, err
	}
	endEdge, err := edge(1, endJD)
	if err != nil {
		return nil, err
	}
	return &Window{
		Start: ephemeris.FromJD(startEdge).UTC,
		End:   ephemeris.FromJD(endEdge).UTC,
	}, nil
}
