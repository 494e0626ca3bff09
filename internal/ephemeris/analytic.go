package ephemeris

import (
	"math"

	"astro-server/internal/shared/errors"
)

// AnalyticProvider computes geocentric ecliptic positions from mean
// orbital elements with the classical perturbation terms. It is pure
// and deterministic, so results are safe to cache indefinitely.
type AnalyticProvider struct {
	minJD float64
	maxJD float64
}

// NewAnalyticProvider builds a provider that accepts Julian Days from
// the start of minYear through the end of maxYear.
func NewAnalyticProvider(minYear, maxYear int) *AnalyticProvider {
	return &AnalyticProvider{
		minJD: julianDayOfYear(minYear),
		maxJD: julianDayOfYear(maxYear + 1),
	}
}

// julianDayOfYear returns the JD at 00:00 UTC on January 1 of year,
// using the standard Fliegel-Van Flandern conversion.
func julianDayOfYear(year int) float64 {
	y := year
	m := 1
	jdn := (1461*(y+4800+(m-14)/12))/4 +
		(367*(m-2-12*((m-14)/12)))/12 -
		(3*((y+4900+(m-14)/12)/100))/4 +
		1 - 32075
	return float64(jdn) - 0.5
}

func (p *AnalyticProvider) checkRange(jd float64) error {
	if jd < p.minJD || jd >= p.maxJD {
		return errors.EphemerisRangef(
			"julian day %.2f outside supported span [%.1f, %.1f)", jd, p.minJD, p.maxJD)
	}
	return nil
}

const (
	// days since the element epoch 2000-01-00.0
	elementEpochJD = 2451543.5

	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi

	// step for the central-difference speed estimate, in days
	speedStep = 0.01
)

// obliquity returns the mean obliquity of the ecliptic in degrees.
func obliquity(d float64) float64 {
	return 23.4393 - 3.563e-7*d
}

// elements holds the mean orbital elements of a body at one instant.
// Angles are in degrees, a in AU (Earth radii for the Moon).
type elements struct {
	N float64 // longitude of the ascending node
	i float64 // inclination to the ecliptic
	w float64 // argument of perihelion
	a float64 // semi-major axis
	e float64 // eccentricity
	M float64 // mean anomaly
}

func sunElements(d float64) elements {
	return elements{
		N: 0, i: 0,
		w: 282.9404 + 4.70935e-5*d,
		a: 1.0,
		e: 0.016709 - 1.151e-9*d,
		M: 356.0470 + 0.9856002585*d,
	}
}

func moonElements(d float64) elements {
	return elements{
		N: 125.1228 - 0.0529538083*d,
		i: 5.1454,
		w: 318.0634 + 0.1643573223*d,
		a: 60.2666,
		e: 0.054900,
		M: 115.3654 + 13.0649929509*d,
	}
}

func planetElements(b Body, d float64) elements {
	switch b {
	case Mercury:
		return elements{
			N: 48.3313 + 3.24587e-5*d,
			i: 7.0047 + 5.00e-8*d,
			w: 29.1241 + 1.01444e-5*d,
			a: 0.387098,
			e: 0.205635 + 5.59e-10*d,
			M: 168.6562 + 4.0923344368*d,
		}
	case Venus:
		return elements{
			N: 76.6799 + 2.46590e-5*d,
			i: 3.3946 + 2.75e-8*d,
			w: 54.8910 + 1.38374e-5*d,
			a: 0.723330,
			e: 0.006773 - 1.302e-9*d,
			M: 48.0052 + 1.6021302244*d,
		}
	case Mars:
		return elements{
			N: 49.5574 + 2.11081e-5*d,
			i: 1.8497 - 1.78e-8*d,
			w: 286.5016 + 2.92961e-5*d,
			a: 1.523688,
			e: 0.093405 + 2.516e-9*d,
			M: 18.6021 + 0.5240207766*d,
		}
	case Jupiter:
		return elements{
			N: 100.4542 + 2.76854e-5*d,
			i: 1.3030 - 1.557e-7*d,
			w: 273.8777 + 1.64505e-5*d,
			a: 5.20256,
			e: 0.048498 + 4.469e-9*d,
			M: 19.8950 + 0.0830853001*d,
		}
	case Saturn:
		return elements{
			N: 113.6634 + 2.38980e-5*d,
			i: 2.4886 - 1.081e-7*d,
			w: 339.3939 + 2.97661e-5*d,
			a: 9.55475,
			e: 0.055546 - 9.499e-9*d,
			M: 316.9670 + 0.0334442282*d,
		}
	case Uranus:
		return elements{
			N: 74.0005 + 1.3978e-5*d,
			i: 0.7733 + 1.9e-8*d,
			w: 96.6612 + 3.0565e-5*d,
			a: 19.18171 - 1.55e-8*d,
			e: 0.047318 + 7.45e-9*d,
			M: 142.5905 + 0.011725806*d,
		}
	case Neptune:
		return elements{
			N: 131.7806 + 3.0173e-5*d,
			i: 1.7700 - 2.55e-7*d,
			w: 272.8461 - 6.027e-6*d,
			a: 30.05826 + 3.313e-8*d,
			e: 0.008606 + 2.15e-9*d,
			M: 260.2471 + 0.005995147*d,
		}
	}
	return elements{}
}

func sind(x float64) float64 { return math.Sin(x * degToRad) }
func cosd(x float64) float64 { return math.Cos(x * degToRad) }
func tand(x float64) float64 { return math.Tan(x * degToRad) }

func atan2d(y, x float64) float64 { return math.Atan2(y, x) * radToDeg }
func asind(x float64) float64     { return math.Asin(x) * radToDeg }

// solveKepler returns the eccentric anomaly in degrees for a mean
// anomaly M (degrees) and eccentricity e.
func solveKepler(M, e float64) float64 {
	eDeg := e * radToDeg
	E := M + eDeg*sind(M)*(1+e*cosd(M))
	for iter := 0; iter < 30; iter++ {
		delta := (E - eDeg*sind(E) - M) / (1 - e*cosd(E))
		E -= delta
		if math.Abs(delta) < 1e-6 {
			break
		}
	}
	return E
}

// heliocentric returns the rectangular ecliptic coordinates of a body
// from its orbital elements. For the Sun and Moon the result is
// geocentric, since their elements are referred to the Earth.
func heliocentric(el elements) (x, y, z, r float64) {
	E := solveKepler(Normalize(el.M), el.e)
	xv := el.a * (cosd(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * sind(E)
	v := atan2d(yv, xv)
	r = math.Sqrt(xv*xv + yv*yv)

	vw := v + el.w
	x = r * (cosd(el.N)*cosd(vw) - sind(el.N)*sind(vw)*cosd(el.i))
	y = r * (sind(el.N)*cosd(vw) + cosd(el.N)*sind(vw)*cosd(el.i))
	z = r * sind(vw) * sind(el.i)
	return x, y, z, r
}

// sunPosition returns the Sun's geocentric ecliptic longitude (degrees)
// and distance (AU), plus its rectangular coordinates for converting
// heliocentric planet positions to geocentric.
func sunPosition(d float64) (lon, dist, xs, ys float64) {
	el := sunElements(d)
	x, y, _, r := heliocentric(el)
	return Normalize(atan2d(y, x)), r, x, y
}

// moonPosition returns the Moon's geocentric ecliptic longitude,
// latitude (degrees) and distance (Earth radii), with the major
// perturbation terms applied.
func moonPosition(d float64) (lon, lat, dist float64) {
	el := moonElements(d)
	x, y, z, _ := heliocentric(el)
	lon = Normalize(atan2d(y, x))
	lat = asind(z / math.Sqrt(x*x+y*y+z*z))
	dist = math.Sqrt(x*x + y*y + z*z)

	Ms := Normalize(sunElements(d).M)
	ws := sunElements(d).w
	Mm := Normalize(el.M)
	Ls := Normalize(Ms + ws)          // Sun's mean longitude
	Lm := Normalize(Mm + el.w + el.N) // Moon's mean longitude
	D := Normalize(Lm - Ls)           // mean elongation
	F := Normalize(Lm - el.N)         // argument of latitude

	lon += -1.274*sind(Mm-2*D) +
		0.658*sind(2*D) -
		0.186*sind(Ms) -
		0.059*sind(2*Mm-2*D) -
		0.057*sind(Mm-2*D+Ms) +
		0.053*sind(Mm+2*D) +
		0.046*sind(2*D-Ms) +
		0.041*sind(Mm-Ms) -
		0.035*sind(D) -
		0.031*sind(Mm+Ms) -
		0.015*sind(2*F-2*D) +
		0.011*sind(Mm-4*D)

	lat += -0.173*sind(F-2*D) -
		0.055*sind(Mm-F-2*D) -
		0.046*sind(Mm+F-2*D) +
		0.033*sind(F+2*D) +
		0.017*sind(2*Mm+F)

	dist += -0.58*cosd(Mm-2*D) - 0.46*cosd(2*D)

	return Normalize(lon), lat, dist
}

// plutoPosition uses the periodic-term fit for Pluto's heliocentric
// position, valid for a few centuries around the element epoch.
func plutoPosition(d float64) (lonecl, latecl, r float64) {
	S := (50.03 + 0.033459652*d) * degToRad
	P := (238.95 + 0.003968789*d) * degToRad

	lonecl = 238.9508 + 0.00400703*d -
		19.799*math.Sin(P) + 19.848*math.Cos(P) +
		0.897*math.Sin(2*P) - 4.956*math.Cos(2*P) +
		0.610*math.Sin(3*P) + 1.211*math.Cos(3*P) -
		0.341*math.Sin(4*P) - 0.190*math.Cos(4*P) +
		0.128*math.Sin(5*P) - 0.034*math.Cos(5*P) -
		0.038*math.Sin(6*P) + 0.031*math.Cos(6*P) +
		0.020*math.Sin(S-P) - 0.010*math.Cos(S-P)

	latecl = -3.9082 -
		5.453*math.Sin(P) - 14.975*math.Cos(P) +
		3.527*math.Sin(2*P) + 1.673*math.Cos(2*P) -
		1.051*math.Sin(3*P) + 0.328*math.Cos(3*P) +
		0.179*math.Sin(4*P) - 0.292*math.Cos(4*P) +
		0.019*math.Sin(5*P) + 0.100*math.Cos(5*P) -
		0.031*math.Sin(6*P) - 0.026*math.Cos(6*P) +
		0.011*math.Cos(S-P)

	r = 40.72 +
		6.68*math.Sin(P) + 6.90*math.Cos(P) -
		1.18*math.Sin(2*P) - 0.03*math.Cos(2*P) +
		0.15*math.Sin(3*P) - 0.14*math.Cos(3*P)

	return Normalize(lonecl), latecl, r
}

// longitudeAt computes a body's geocentric ecliptic longitude,
// latitude and distance at days d past the element epoch.
func longitudeAt(b Body, d float64) (lon, lat, dist float64) {
	switch b {
	case Sun:
		lon, dist, _, _ = sunPosition(d)
		return lon, 0, dist
	case Moon:
		return moonPosition(d)
	case NorthNode:
		return Normalize(moonElements(d).N), 0, 0
	case SouthNode:
		return Normalize(moonElements(d).N + 180), 0, 0
	}

	var xh, yh, zh, rh float64
	if b == Pluto {
		lonecl, latecl, r := plutoPosition(d)
		xh = r * cosd(lonecl) * cosd(latecl)
		yh = r * sind(lonecl) * cosd(latecl)
		zh = r * sind(latecl)
		rh = r
	} else {
		el := planetElements(b, d)
		xh, yh, zh, rh = heliocentric(el)
		lonecl := Normalize(atan2d(yh, xh))
		latecl := asind(zh / rh)
		lonecl, latecl = perturb(b, d, lonecl, latecl)
		xh = rh * cosd(lonecl) * cosd(latecl)
		yh = rh * sind(lonecl) * cosd(latecl)
		zh = rh * sind(latecl)
	}

	_, _, xs, ys := sunPosition(d)
	xg := xh + xs
	yg := yh + ys
	zg := zh

	lon = Normalize(atan2d(yg, xg))
	dist = math.Sqrt(xg*xg + yg*yg + zg*zg)
	lat = asind(zg / dist)
	return lon, lat, dist
}

// perturb applies the mutual perturbation terms for the giant planets
// to heliocentric ecliptic coordinates.
func perturb(b Body, d float64, lonecl, latecl float64) (float64, float64) {
	if b != Jupiter && b != Saturn && b != Uranus {
		return lonecl, latecl
	}
	Mj := Normalize(planetElements(Jupiter, d).M)
	Msat := Normalize(planetElements(Saturn, d).M)
	Mu := Normalize(planetElements(Uranus, d).M)

	switch b {
	case Jupiter:
		lonecl += -0.332*sind(2*Mj-5*Msat-67.6) -
			0.056*sind(2*Mj-2*Msat+21) +
			0.042*sind(3*Mj-5*Msat+21) -
			0.036*sind(Mj-2*Msat) +
			0.022*cosd(Mj-Msat) +
			0.023*sind(2*Mj-3*Msat+52) -
			0.016*sind(Mj-5*Msat-69)
	case Saturn:
		lonecl += 0.812*sind(2*Mj-5*Msat-67.6) -
			0.229*cosd(2*Mj-4*Msat-2) +
			0.119*sind(Mj-2*Msat-3) +
			0.046*sind(2*Mj-6*Msat-69) +
			0.014*sind(Mj-3*Msat+32)
		latecl += -0.020*cosd(2*Mj-4*Msat-2) +
			0.018*sind(2*Mj-6*Msat-49)
	case Uranus:
		lonecl += 0.040*sind(Msat-2*Mu+6) +
			0.035*sind(Msat-3*Mu+33) -
			0.015*sind(Mj-Mu+20)
	}
	return Normalize(lonecl), latecl
}

// Position implements Provider.
func (p *AnalyticProvider) Position(body Body, jd float64) (Position, error) {
	if body == Ascendant || body == Midheaven {
		return Position{}, errors.Configurationf("%s is derived from houses, not the ephemeris", body)
	}
	if !validBodies[body] {
		return Position{}, errors.Configurationf("unknown body: %q", body)
	}
	if err := p.checkRange(jd); err != nil {
		return Position{}, err
	}

	d := jd - elementEpochJD
	lon, lat, dist := longitudeAt(body, d)

	var speed float64
	switch body {
	case NorthNode, SouthNode:
		// the mean node regresses at a near-constant rate
		speed = -0.0529539
	default:
		before, _, _ := longitudeAt(body, d-speedStep)
		after, _, _ := longitudeAt(body, d+speedStep)
		speed = Wrap180(after-before) / (2 * speedStep)
	}

	return Position{
		Body:       body,
		Longitude:  lon,
		Latitude:   lat,
		Distance:   dist,
		Speed:      speed,
		Retrograde: speed < 0,
	}, nil
}
