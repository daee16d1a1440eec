package weathersim

import "math"

const (
	// GlobalSolarConstant is the extraterrestrial normal irradiance in W/m2.
	GlobalSolarConstant = 1367.0
	// zhSolarConstant is the solar constant the Zhang-Huang fit was built on.
	zhSolarConstant = 1355.0

	stefanBoltzmann = 5.6697e-8 // W/m2-K4
	kelvinOffset    = 273.15

	// sunIsUpSine is the sine of altitude below which the sun contributes
	// nothing.
	sunIsUpSine = 1.0e-5
)

func degToRad(d float64) float64 { return d * math.Pi / 180.0 }
func radToDeg(r float64) float64 { return r * 180.0 / math.Pi }

// DayConstants are the solar quantities fixed for one day of the year.
type DayConstants struct {
	EquationOfTime float64 // hours
	SinDecl        float64
	CosDecl        float64

	// Apparent extraterrestrial irradiance, atmospheric extinction and
	// diffuse factor for the ASHRAE clear sky model.
	A float64 // W/m2
	B float64
	C float64

	// SolarConstantFactor is the annual orbit correction applied to the
	// solar constant.
	SolarConstantFactor float64
}

// Annual Fourier series fits over the day angle, constant term first, then
// alternating sine and cosine harmonics up to the fourth.
var (
	sinDeclCoef  = [9]float64{0.00561800, 0.0657911, -0.392779, 0.00064440, -0.00618495, -0.00010101, -0.00007951, -0.00011691, 0.00002096}
	eqOfTimeCoef = [9]float64{0.00021971, -0.122649, 0.00762856, -0.156308, -0.0530028, -0.00388702, -0.00123978, -0.00270502, -0.00167992}
	ashraeACoef  = [9]float64{1161.6685, 1.1554, 77.3575, -0.5359, -3.7622, 0.9875, -3.3924, -1.7445, 1.1198}
	ashraeBCoef  = [9]float64{0.171631, -0.00400448, -0.0344923, 0.00000209, 0.00325428, -0.00085429, 0.00229562, 0.0009034, -0.0011867}
	ashraeCCoef  = [9]float64{0.0905151, -0.00322522, -0.0407966, 0.000104164, 0.00745899, -0.00086461, 0.0013111, 0.000808275, -0.00170515}
)

func fourier9(x float64, c [9]float64) float64 {
	return c[0] +
		c[1]*math.Sin(x) + c[2]*math.Cos(x) +
		c[3]*math.Sin(2.0*x) + c[4]*math.Cos(2.0*x) +
		c[5]*math.Sin(3.0*x) + c[6]*math.Cos(3.0*x) +
		c[7]*math.Sin(4.0*x) + c[8]*math.Cos(4.0*x)
}

// DailySolarCoeffs evaluates the annual fits for a day of the year.
func DailySolarCoeffs(dayOfYear int) DayConstants {
	x := 2.0 * math.Pi / 366.0 * float64(dayOfYear)
	var dc DayConstants
	dc.SinDecl = fourier9(x, sinDeclCoef)
	dc.CosDecl = math.Sqrt(1.0 - dc.SinDecl*dc.SinDecl)
	dc.EquationOfTime = fourier9(x, eqOfTimeCoef)
	dc.A = fourier9(x, ashraeACoef)
	dc.B = fourier9(x, ashraeBCoef)
	dc.C = fourier9(x, ashraeCCoef)
	dc.SolarConstantFactor = 1.000047 + 0.000352615*math.Sin(x) + 0.0334454*math.Cos(x)
	return dc
}

// SolarGeometry fixes the site quantities of the sun position calculation.
type SolarGeometry struct {
	sinLat  float64
	cosLat  float64
	lonDiff float64 // time zone meridian minus site longitude, degrees
}

// NewSolarGeometry takes the site latitude and longitude in degrees (north
// and east positive) and the time zone in hours from UTC.
func NewSolarGeometry(latitude, longitude, timeZone float64) SolarGeometry {
	lat := degToRad(latitude)
	return SolarGeometry{
		sinLat:  math.Sin(lat),
		cosLat:  math.Cos(lat),
		lonDiff: timeZone*15.0 - longitude,
	}
}

// SinAltitude gives the sine of the solar altitude at a local standard time
// in fractional hours.
func (g SolarGeometry) SinAltitude(localTime float64, dc DayConstants) float64 {
	h := degToRad(15.0*(12.0-(localTime+dc.EquationOfTime)) + g.lonDiff)
	return dc.SinDecl*g.sinLat + dc.CosDecl*g.cosLat*math.Cos(h)
}

// SunUp reports whether a sine of altitude counts as daylight.
func SunUp(sinAlt float64) bool { return sinAlt > sunIsUpSine }

// AirMass gives the relative optical air mass for the cosine of the zenith
// angle, after Kasten and Young. Below the horizon the grazing limit holds.
func AirMass(cosZen float64) float64 {
	if cosZen >= 1.0 {
		return 1.0
	}
	if cosZen <= 0.001 {
		return 37.07837343
	}
	altDeg := 90.0 - radToDeg(math.Acos(cosZen))
	return 1.0 / (cosZen + 0.50572*math.Pow(6.07995+altDeg, -1.6364))
}

// ASHRAEClearSky evaluates the ASHRAE clear sky model. clearness is the sky
// clearness number, 1.0 for the standard atmosphere. Returns direct normal
// and diffuse horizontal irradiance in W/m2.
func ASHRAEClearSky(sinAlt, clearness float64, dc DayConstants) (beam, diffuse float64) {
	if sinAlt <= sunIsUpSine {
		return 0.0, 0.0
	}
	exponent := dc.B / sinAlt
	var totHoriz float64
	if exponent <= 700.0 {
		totHoriz = clearness * dc.A * (dc.C + sinAlt) * math.Exp(-exponent)
	}
	if totHoriz <= 0.0 {
		return 0.0, 0.0
	}

	ho := GlobalSolarConstant * dc.SolarConstantFactor * sinAlt
	kt := math.Min(totHoriz/ho, 0.75)
	diffuse = totHoriz * (1.0045 + kt*(0.04349+kt*(-3.5227+2.6313*kt)))
	if clearness > 0.70 {
		diffuse = totHoriz * dc.C / (dc.C + sinAlt)
	}
	beam = totHoriz - diffuse
	diffuse = math.Max(diffuse, 0.0)
	beam = math.Max(beam, 0.0) / sinAlt
	return beam, diffuse
}

// ASHRAETau evaluates the ASHRAE tau model from monthly beam and diffuse
// optical depths. rev2017 selects the 2017 air mass exponent fit over the
// 2009 one. Returns direct normal and diffuse horizontal irradiance in W/m2.
func ASHRAETau(sinAlt, taub, taud float64, dc DayConstants, rev2017 bool) (beam, diffuse float64) {
	if sinAlt <= sunIsUpSine {
		return 0.0, 0.0
	}
	var ab, ad float64
	if rev2017 {
		ab = 1.454 - 0.406*taub - 0.268*taud + 0.021*taub*taud
		ad = 0.507 + 0.205*taub - 0.080*taud - 0.190*taub*taud
	} else {
		ab = 1.219 - 0.043*taub - 0.151*taud - 0.204*taub*taud
		ad = 0.202 + 0.852*taub - 0.007*taud - 0.357*taub*taud
	}
	etr := GlobalSolarConstant * dc.SolarConstantFactor
	m := AirMass(sinAlt)
	beam = etr * math.Exp(-taub*math.Pow(m, ab))
	diffuse = etr * math.Exp(-taud*math.Pow(m, ad))
	return beam, diffuse
}

// ZhangHuang estimates global horizontal irradiance from ordinary weather
// observations and splits it into direct and diffuse horizontal components.
// totSkyCover is a fraction 0..1, deltaT3h the dry-bulb change over the past
// three hours in C, relHum in percent and windSpeed in m/s.
func ZhangHuang(sinAlt, totSkyCover, deltaT3h, relHum, windSpeed float64) (global, beam, diffuse float64) {
	const (
		c0 = 0.5598
		c1 = 0.4982
		c2 = -0.6762
		c3 = 0.02842
		c4 = -0.00317
		c5 = 0.014
		d  = -17.853
		k  = 0.843
	)
	if sinAlt <= sunIsUpSine {
		return 0.0, 0.0, 0.0
	}
	global = (zhSolarConstant*sinAlt*
		(c0+c1*totSkyCover+c2*totSkyCover*totSkyCover+c3*deltaT3h+c4*relHum+c5*windSpeed) + d) / k
	global = math.Max(global, 0.0)
	if global == 0.0 {
		return 0.0, 0.0, 0.0
	}

	// Watanabe split into direct and diffuse via the clearness index.
	kt := global / (zhSolarConstant * sinAlt)
	ktc := 0.4268 + 0.1934*sinAlt
	var kds float64
	if kt < ktc {
		kds = (3.996 - 3.862*sinAlt + 1.54*sinAlt*sinAlt) * kt * kt * kt
	} else {
		onemkt := 1.0 - kt
		kds = kt - (1.107+0.03569*sinAlt+1.681*sinAlt*sinAlt)*onemkt*onemkt*onemkt
	}
	beam = zhSolarConstant * sinAlt * kds * (1.0 - kt) / (1.0 - kds)
	diffuse = zhSolarConstant * sinAlt * (kt - kds) / (1.0 - kds)
	beam = math.Max(beam, 0.0)
	diffuse = math.Max(diffuse, 0.0)
	return global, beam, diffuse
}

// SkyTempModel selects the sky emissivity correlation.
type SkyTempModel int

const (
	SkyTempClarkAllen SkyTempModel = iota
	SkyTempBrunt
	SkyTempIdso
	SkyTempBerdahlMartin
)

// SkyEmissivity gives the effective sky emissivity. opaqueCover is the
// opaque sky cover in tenths, vaporPress the ambient vapor pressure in Pa.
// Every correlation takes the same cloud cover correction.
func SkyEmissivity(model SkyTempModel, opaqueCover, dryBulb, dewPoint, vaporPress float64) float64 {
	var esky float64
	switch model {
	case SkyTempBrunt:
		esky = 0.618 + 0.056*math.Sqrt(vaporPress/100.0)
	case SkyTempIdso:
		esky = 0.685 + 0.000032*(vaporPress/100.0)*math.Exp(1699.0/(dryBulb+kelvinOffset))
	case SkyTempBerdahlMartin:
		tdew := math.Min(dryBulb, dewPoint) / 100.0
		esky = 0.758 + 0.521*tdew + 0.625*tdew*tdew
	default:
		esky = 0.787 + 0.764*math.Log((math.Min(dryBulb, dewPoint)+kelvinOffset)/kelvinOffset)
	}
	n := opaqueCover
	return esky * (1.0 + 0.0224*n - 0.0035*n*n + 0.00028*n*n*n)
}

// HorizIRFromSky gives the horizontal infrared intensity in W/m2 for an
// emissivity and a dry-bulb temperature in C.
func HorizIRFromSky(emissivity, dryBulb float64) float64 {
	t := dryBulb + kelvinOffset
	return emissivity * stefanBoltzmann * t * t * t * t
}

// SkyTempFromIR inverts the horizontal infrared intensity to an effective
// sky temperature in C.
func SkyTempFromIR(ir float64) float64 {
	return math.Pow(ir/stefanBoltzmann, 0.25) - kelvinOffset
}
