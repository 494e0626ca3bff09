package ephemeris

import (
	"math"

	"astro-server/internal/shared/errors"
)

// polarLimit is the geographic latitude beyond which the angles
// themselves degenerate and no house system can resolve.
const polarLimit = 89.9

// gmst returns the Greenwich mean sidereal time in degrees.
func gmst(jd float64) float64 {
	return Normalize(280.46061837 + 360.98564736629*(jd-2451545.0))
}

// mcLongitude converts a right ascension of the meridian to the
// ecliptic longitude of the Midheaven.
func mcLongitude(ramc, eps float64) float64 {
	return Normalize(atan2d(sind(ramc), cosd(ramc)*cosd(eps)))
}

// ascendantAt returns the ecliptic longitude rising on the eastern
// horizon for a given RAMC, obliquity and geographic latitude.
func ascendantAt(ramc, eps, lat float64) float64 {
	asc := atan2d(cosd(ramc), -(sind(ramc)*cosd(eps) + tand(lat)*sind(eps)))
	asc = Normalize(asc)
	// the ascendant falls in the half-circle following the MC
	mc := mcLongitude(ramc, eps)
	if Normalize(asc-mc) >= 180 {
		asc = Normalize(asc + 180)
	}
	return asc
}

// Houses implements Provider.
func (p *AnalyticProvider) Houses(jd float64, latitude, longitude float64, system HouseSystem) (HouseCusps, error) {
	if err := p.checkRange(jd); err != nil {
		return HouseCusps{}, err
	}
	if latitude < -90 || latitude > 90 {
		return HouseCusps{}, errors.Validationf("latitude %.4f outside [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return HouseCusps{}, errors.Validationf("longitude %.4f outside [-180, 180]", longitude)
	}
	if !validHouseSystems[system] {
		return HouseCusps{}, errors.Configurationf("unsupported house system: %q", system)
	}
	if math.Abs(latitude) >= polarLimit {
		return HouseCusps{}, errors.DegenerateGeometryf(
			"latitude %.4f too close to the pole for any house system", latitude)
	}

	d := jd - elementEpochJD
	eps := obliquity(d)
	ramc := Normalize(gmst(jd) + longitude)
	mc := mcLongitude(ramc, eps)
	asc := ascendantAt(ramc, eps, latitude)

	hc := HouseCusps{System: system, Ascendant: asc, Midheaven: mc}

	switch system {
	case Equal:
		for i := 0; i < 12; i++ {
			hc.Cusps[i] = Normalize(asc + 30*float64(i))
		}
		return hc, nil

	case WholeSign:
		base := 30 * math.Floor(asc/30)
		for i := 0; i < 12; i++ {
			hc.Cusps[i] = Normalize(base + 30*float64(i))
		}
		return hc, nil

	case Porphyry:
		fillQuadrants(&hc, asc, mc, porphyryIntermediate(asc, mc))
		return hc, nil

	case Placidus:
		inter, err := placidusIntermediate(ramc, eps, latitude)
		if err != nil {
			return HouseCusps{}, err
		}
		fillQuadrants(&hc, asc, mc, inter)
		return hc, nil

	case Koch:
		inter, err := kochIntermediate(ramc, eps, latitude, mc)
		if err != nil {
			return HouseCusps{}, err
		}
		fillQuadrants(&hc, asc, mc, inter)
		return hc, nil
	}

	return HouseCusps{}, errors.Configurationf("unsupported house system: %q", system)
}

// intermediate holds the four computed intermediate cusps of a
// quadrant system: houses 11, 12, 2 and 3.
type intermediate struct {
	c11, c12, c2, c3 float64
}

// fillQuadrants lays out all twelve cusps from the angles and the
// four intermediate cusps, setting each opposite cusp 180 degrees
// from its partner.
func fillQuadrants(hc *HouseCusps, asc, mc float64, in intermediate) {
	hc.Cusps[0] = asc
	hc.Cusps[1] = in.c2
	hc.Cusps[2] = in.c3
	hc.Cusps[3] = Normalize(mc + 180)
	hc.Cusps[4] = Normalize(in.c11 + 180)
	hc.Cusps[5] = Normalize(in.c12 + 180)
	hc.Cusps[6] = Normalize(asc + 180)
	hc.Cusps[7] = Normalize(in.c2 + 180)
	hc.Cusps[8] = Normalize(in.c3 + 180)
	hc.Cusps[9] = mc
	hc.Cusps[10] = in.c11
	hc.Cusps[11] = in.c12
}

// porphyryIntermediate trisects the arcs between the angles.
func porphyryIntermediate(asc, mc float64) intermediate {
	// arc from MC forward to Ascendant, and from Ascendant to IC
	arcTop := Normalize(asc - mc)
	arcBottom := 180 - arcTop
	return intermediate{
		c11: Normalize(mc + arcTop/3),
		c12: Normalize(mc + 2*arcTop/3),
		c2:  Normalize(asc + arcBottom/3),
		c3:  Normalize(asc + 2*arcBottom/3),
	}
}

// placidusCusp iterates the Placidus equation for one intermediate
// cusp. offset is the cusp's initial hour-angle offset from the RAMC
// and f is the fraction of the semi-arc (1/3 or 2/3).
func placidusCusp(ramc, eps, lat, offset, f float64, under bool) (float64, error) {
	ra := Normalize(ramc + offset)
	for iter := 0; iter < 100; iter++ {
		lon := Normalize(atan2d(sind(ra), cosd(ra)*cosd(eps)))
		dec := asind(sind(eps) * sind(lon))
		x := -tand(lat) * tand(dec)
		if x < -1 || x > 1 {
			return 0, errors.DegenerateGeometryf(
				"placidus houses undefined at latitude %.4f, use whole_sign", lat)
		}
		sa := math.Acos(x) * radToDeg
		var next float64
		if under {
			next = Normalize(ramc + 180 - (180-sa)*f)
		} else {
			next = Normalize(ramc + sa*f)
		}
		if math.Abs(Wrap180(next-ra)) < 1e-7 {
			ra = next
			break
		}
		ra = next
	}
	return Normalize(atan2d(sind(ra), cosd(ra)*cosd(eps))), nil
}

func placidusIntermediate(ramc, eps, lat float64) (intermediate, error) {
	c11, err := placidusCusp(ramc, eps, lat, 30, 1.0/3.0, false)
	if err != nil {
		return intermediate{}, err
	}
	c12, err := placidusCusp(ramc, eps, lat, 60, 2.0/3.0, false)
	if err != nil {
		return intermediate{}, err
	}
	c2, err := placidusCusp(ramc, eps, lat, 120, 2.0/3.0, true)
	if err != nil {
		return intermediate{}, err
	}
	c3, err := placidusCusp(ramc, eps, lat, 150, 1.0/3.0, true)
	if err != nil {
		return intermediate{}, err
	}
	return intermediate{c11: c11, c12: c12, c2: c2, c3: c3}, nil
}

// kochIntermediate derives the intermediate cusps from the MC's
// semi-arc: each cusp is the ascendant that would rise when the
// meridian has turned by a fraction of that arc.
func kochIntermediate(ramc, eps, lat, mc float64) (intermediate, error) {
	decMC := asind(sind(eps) * sind(mc))
	x := -tand(lat) * tand(decMC)
	if x < -1 || x > 1 {
		return intermediate{}, errors.DegenerateGeometryf(
			"koch houses undefined at latitude %.4f, use whole_sign", lat)
	}
	sa := math.Acos(x) * radToDeg
	sn := 180 - sa
	return intermediate{
		c11: ascendantAt(Normalize(ramc-2*sa/3), eps, lat),
		c12: ascendantAt(Normalize(ramc-sa/3), eps, lat),
		c2:  ascendantAt(Normalize(ramc+sn/3), eps, lat),
		c3:  ascendantAt(Normalize(ramc+2*sn/3), eps, lat),
	}, nil
}
