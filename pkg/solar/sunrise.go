// Package solar computes sunrise and sunset times and the night band shaded
// behind the flower clock dial.
package solar

import (
	"fmt"
	"math"
	"time"
)

// CalculateSunriseSunset returns sunrise and sunset as minutes from midnight UTC
// for the given year and day-of-year at the specified latitude and longitude.
// Returns (-1, -1, nil) for polar day (sun never sets) or polar night (sun never rises).
func CalculateSunriseSunset(year, dayOfYear int, latitude, longitude float64) (sunriseMinutes, sunsetMinutes int, err error) {
	doy := float64(dayOfYear)
	innerAngle := degToRad(356.6 + 0.9856*doy)
	outerAngle := degToRad(278.97 + 0.9856*doy + 1.9165*math.Sin(innerAngle))
	declinationRad := math.Asin(0.39785 * math.Sin(outerAngle))

	// cos(H) = -tan(lat) * tan(declination) with the sun on the horizon
	cosH := -math.Tan(degToRad(latitude)) * math.Tan(declinationRad)
	if cosH < -1.0 || cosH > 1.0 {
		return -1, -1, nil
	}

	hourAngleMinutes := radToDeg(math.Acos(cosH)) / 15.0 * 60.0

	// Each degree of longitude east moves solar noon 4 minutes earlier in UTC
	refTime := time.Date(year, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	solarNoonUTC := 720.0 - longitude*4.0 - equationOfTime(refTime)

	sunriseUTC := math.Mod(solarNoonUTC-hourAngleMinutes+1440, 1440)
	sunsetUTC := math.Mod(solarNoonUTC+hourAngleMinutes+1440, 1440)

	return int(math.Round(sunriseUTC)) % 1440, int(math.Round(sunsetUTC)) % 1440, nil
}

// FormatSunTime renders UTC minutes from midnight as a local HH:MM clock time
// on date, using the same local-noon offset as NightBand. Negative minutes,
// the polar marker, give "".
func FormatSunTime(utcMinutes int, date time.Time) string {
	if utcMinutes < 0 {
		return ""
	}

	m := localMinutes(utcMinutes, noonOffsetMinutes(date))
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
