package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Band is a span of the 24-hour dial from StartHour to EndHour, clockwise.
// A band whose start is after its end wraps past midnight.
type Band struct {
	StartHour float64
	EndHour   float64
}

// Empty reports whether the band covers no time at all
func (b Band) Empty() bool {
	return b.StartHour == b.EndHour
}

// Wraps reports whether the band crosses midnight
func (b Band) Wraps() bool {
	return b.StartHour > b.EndHour
}

// Hours returns the length of the band in hours
func (b Band) Hours() float64 {
	if b.Wraps() {
		return 24 - b.StartHour + b.EndHour
	}
	return b.EndHour - b.StartHour
}

// Contains reports whether the given hour of day falls inside the band
func (b Band) Contains(hour float64) bool {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}
	switch {
	case b.Empty():
		return false
	case b.Wraps():
		return hour >= b.StartHour || hour < b.EndHour
	default:
		return hour >= b.StartHour && hour < b.EndHour
	}
}

// Segments splits the band at midnight into non-wrapping pieces
func (b Band) Segments() []Band {
	switch {
	case b.Empty():
		return nil
	case b.Wraps():
		segs := []Band{{StartHour: b.StartHour, EndHour: 24}}
		if b.EndHour > 0 {
			segs = append(segs, Band{StartHour: 0, EndHour: b.EndHour})
		}
		return segs
	default:
		return []Band{b}
	}
}

// Site is an observation location on a particular local date
type Site struct {
	Latitude  float64
	Longitude float64
	Date      time.Time // only the date and location are used
}

// SunTimes returns sunrise and sunset at the site as UTC minutes from
// midnight. ok is false during polar day or polar night.
func SunTimes(site Site) (sunriseUTC, sunsetUTC int, ok bool) {
	y, m, d := site.Date.Date()
	doy := julian.DayOfYearGregorian(y, int(m), d)

	sunrise, sunset, err := CalculateSunriseSunset(y, doy, site.Latitude, site.Longitude)
	if err != nil || sunrise < 0 || sunset < 0 {
		return -1, -1, false
	}
	return sunrise, sunset, true
}

// NightBand returns the sunset-to-sunrise band in the site's local time. ok is
// false during polar day or polar night, when there is no sunset or sunrise.
func NightBand(site Site) (band Band, ok bool) {
	sunrise, sunset, ok := SunTimes(site)
	if !ok {
		return Band{}, false
	}

	offset := noonOffsetMinutes(site.Date)
	return Band{
		StartHour: float64(localMinutes(sunset, offset)) / 60,
		EndHour:   float64(localMinutes(sunrise, offset)) / 60,
	}, true
}

// noonOffsetMinutes is the UTC offset in effect at local noon on date, so a
// DST change overnight doesn't shift the band.
func noonOffsetMinutes(date time.Time) int {
	y, m, d := date.Date()
	_, offset := time.Date(y, m, d, 12, 0, 0, 0, date.Location()).Zone()
	return offset / 60
}

func localMinutes(utcMinutes, offsetMinutes int) int {
	m := (utcMinutes + offsetMinutes) % 1440
	if m < 0 {
		m += 1440
	}
	return m
}
