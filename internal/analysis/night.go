package analysis

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/flowerclock/pkg/config"
	"github.com/chrissnell/flowerclock/pkg/solar"
)

// ResolveNight returns the band to shade. A configured location takes
// precedence over the fixed hours unless the site has no sunset or sunrise
// on that date.
func ResolveNight(night config.NightData, logger *zap.SugaredLogger) (solar.Band, error) {
	fixed := solar.Band{StartHour: night.StartHour, EndHour: night.EndHour}
	if night.Location == nil {
		return fixed, nil
	}

	loc := time.UTC
	if night.Location.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(night.Location.Timezone)
		if err != nil {
			return solar.Band{}, fmt.Errorf("loading timezone %q: %w", night.Location.Timezone, err)
		}
	}

	date, err := time.ParseInLocation(time.DateOnly, night.Location.Date, loc)
	if err != nil {
		return solar.Band{}, fmt.Errorf("parsing location date: %w", err)
	}

	site := solar.Site{
		Latitude:  night.Location.Latitude,
		Longitude: night.Location.Longitude,
		Date:      date,
	}
	band, ok := solar.NightBand(site)
	if !ok {
		logger.Warnw("no sunrise or sunset at location; using fixed night hours",
			"latitude", night.Location.Latitude,
			"date", night.Location.Date,
		)
		return fixed, nil
	}

	sunrise, sunset, _ := solar.SunTimes(site)
	logger.Debugw("night band from sunset/sunrise",
		"sunset", solar.FormatSunTime(sunset, date),
		"sunrise", solar.FormatSunTime(sunrise, date),
	)
	return band, nil
}
