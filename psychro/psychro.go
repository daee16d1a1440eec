// Package psychro provides moist air property functions on the SI unit
// system: temperatures in C, pressures in Pa, humidity ratios in kg water
// per kg dry air, enthalpies in J/kg.
package psychro

import "math"

const (
	// KelvinOffset converts C to K.
	KelvinOffset = 273.15
	// MWRatio is the molecular weight ratio of water vapor to dry air.
	MWRatio = 0.62198
	// RAir is the gas constant of dry air [J/kg-K].
	RAir = 287.0
)

// SatPress gives the saturation vapor pressure [Pa] over liquid water above
// 0 C and over ice below, after Wexler and Hyland.
func SatPress(tdb float64) float64 {
	t := tdb + KelvinOffset
	if tdb >= 0.0 {
		return math.Exp(-5800.2206/t +
			1.3914993 -
			0.048640239*t +
			0.41764768e-4*t*t -
			0.14452093e-7*t*t*t +
			6.5459673*math.Log(t))
	}
	return math.Exp(-5674.5359/t +
		6.3925247 -
		0.9677843e-2*t +
		0.62215701e-6*t*t +
		0.20747825e-8*t*t*t -
		0.9484024e-12*t*t*t*t +
		4.1635019*math.Log(t))
}

// VaporPressFnW gives the partial vapor pressure [Pa] of a humidity ratio at
// barometric pressure pb.
func VaporPressFnW(w, pb float64) float64 {
	return pb * w / (MWRatio + w)
}

// WFnPw gives the humidity ratio for a partial vapor pressure at barometric
// pressure pb.
func WFnPw(pw, pb float64) float64 {
	return MWRatio * pw / (pb - pw)
}

// WFnTdpPb gives the humidity ratio saturated at the dew point.
func WFnTdpPb(tdp, pb float64) float64 {
	return WFnPw(SatPress(tdp), pb)
}

// WFnTdbRhPb gives the humidity ratio at dry-bulb temperature tdb and
// relative humidity rh in percent.
func WFnTdbRhPb(tdb, rh, pb float64) float64 {
	return WFnPw(rh/100.0*SatPress(tdb), pb)
}

// WFnTdbTwbPb gives the humidity ratio from dry-bulb and wet-bulb
// temperatures.
func WFnTdbTwbPb(tdb, twb, pb float64) float64 {
	wsstar := WFnTdpPb(twb, pb)
	return ((2501.0-2.326*twb)*wsstar - 1.006*(tdb-twb)) /
		(2501.0 + 1.860*tdb - 4.186*twb)
}

// WFnTdbH gives the humidity ratio from dry-bulb temperature and specific
// enthalpy [J/kg].
func WFnTdbH(tdb, h float64) float64 {
	return (h - 1.00484e3*tdb) / (2.50094e6 + 1.85895e3*tdb)
}

// HFnTdbW gives the specific enthalpy [J/kg] of moist air.
func HFnTdbW(tdb, w float64) float64 {
	if w < 0 {
		w = 0
	}
	return 1.00484e3*tdb + w*(2.50094e6+1.85895e3*tdb)
}

// TdpFnPw gives the dew point temperature [C] for a partial vapor pressure
// [Pa], after Udagawa's fitted inverses of the saturation curve.
func TdpFnPw(pw float64) float64 {
	if pw < 1.0 {
		pw = 1.0
	}
	y := math.Log(pw)
	if pw >= 611.2 {
		return -77.199 + y*(13.198+y*(-0.63772+y*0.071098))
	}
	return -60.662 + y*(7.4624+y*(0.20594+y*0.016321))
}

// TdpFnWPb gives the dew point temperature for a humidity ratio at
// barometric pressure pb.
func TdpFnWPb(w, pb float64) float64 {
	return TdpFnPw(VaporPressFnW(w, pb))
}

// RhFnTdbWPb gives the relative humidity in percent for a humidity ratio at
// dry-bulb temperature tdb.
func RhFnTdbWPb(tdb, w, pb float64) float64 {
	rh := VaporPressFnW(w, pb) / SatPress(tdb) * 100.0
	if rh < 0.0 {
		return 0.0
	}
	return rh
}

// TwbFnTdbWPb gives the wet-bulb temperature by bisecting the humidity
// ratio relation between the dew point and the dry bulb.
func TwbFnTdbWPb(tdb, w, pb float64) float64 {
	lo, hi := -100.0, tdb
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if WFnTdbTwbPb(tdb, mid, pb) < w {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1.0e-7 {
			break
		}
	}
	return 0.5 * (lo + hi)
}

// TsatFnHPb gives the saturation temperature for a specific enthalpy [J/kg]
// at barometric pressure pb.
func TsatFnHPb(h, pb float64) float64 {
	lo, hi := -100.0, 100.0
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if HFnTdbW(mid, WFnTdpPb(mid, pb)) < h {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1.0e-7 {
			break
		}
	}
	return 0.5 * (lo + hi)
}

// RhoAirFnPbTdbW gives the moist air density [kg/m3].
func RhoAirFnPbTdbW(pb, tdb, w float64) float64 {
	return pb / (RAir * (tdb + KelvinOffset) * (1.0 + 1.6078*w))
}

// Provider bundles the package functions behind value methods so engines
// can take the property set as an injected dependency.
type Provider struct{}

func (Provider) SatPress(tdb float64) float64              { return SatPress(tdb) }
func (Provider) WFnTdpPb(tdp, pb float64) float64          { return WFnTdpPb(tdp, pb) }
func (Provider) WFnTdbRhPb(tdb, rh, pb float64) float64    { return WFnTdbRhPb(tdb, rh, pb) }
func (Provider) WFnTdbTwbPb(tdb, twb, pb float64) float64  { return WFnTdbTwbPb(tdb, twb, pb) }
func (Provider) WFnTdbH(tdb, h float64) float64            { return WFnTdbH(tdb, h) }
func (Provider) TdpFnWPb(w, pb float64) float64            { return TdpFnWPb(w, pb) }
func (Provider) TwbFnTdbWPb(tdb, w, pb float64) float64    { return TwbFnTdbWPb(tdb, w, pb) }
func (Provider) RhFnTdbWPb(tdb, w, pb float64) float64     { return RhFnTdbWPb(tdb, w, pb) }
func (Provider) HFnTdbW(tdb, w float64) float64            { return HFnTdbW(tdb, w) }
func (Provider) TsatFnHPb(h, pb float64) float64           { return TsatFnHPb(h, pb) }
func (Provider) RhoAirFnPbTdbW(pb, tdb, w float64) float64 { return RhoAirFnPbTdbW(pb, tdb, w) }
