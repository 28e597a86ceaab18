package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get the observation groups only
	GetGroups() ([]GroupData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents a complete flower clock chart definition
type ConfigData struct {
	Title  string      `json:"title"`
	Night  NightData   `json:"night"`
	Render RenderData  `json:"render"`
	Groups []GroupData `json:"groups"`
}

// NightData describes the shaded night band. When Location is set the band
// is derived from sunset and sunrise on Location.Date; the fixed hours are
// used otherwise and as the polar day/night fallback.
type NightData struct {
	StartHour float64       `json:"start_hour"`
	EndHour   float64       `json:"end_hour"`
	Location  *LocationData `json:"location,omitempty"`
}

// LocationData holds the observation site used for sunrise/sunset calculations
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      string  `json:"date"`               // YYYY-MM-DD
	Timezone  string  `json:"timezone,omitempty"` // IANA name, defaults to UTC
}

// RenderData holds presentation settings for the dial
type RenderData struct {
	Size      int `json:"size"`       // square canvas edge in pixels
	TickHours int `json:"tick_hours"` // spacing of hour ticks
}

// GroupData is a named set of fractional-day observations
type GroupData struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Color        string    `json:"color,omitempty"`
	Observations []float64 `json:"observations"`
}

const (
	DefaultTitle          = "Flowering time"
	DefaultSize           = 600
	DefaultTickHours      = 2
	DefaultNightStartHour = 18.0
	DefaultNightEndHour   = 8.0
)

// Palette is cycled through for groups that don't name a color
var Palette = []string{"red", "blue", "green", "darkorange", "purple", "saddlebrown", "magenta", "teal"}

// DefaultNight returns the fixed 18:00 to 08:00 night band
func DefaultNight() NightData {
	return NightData{
		StartHour: DefaultNightStartHour,
		EndHour:   DefaultNightEndHour,
	}
}

// ApplyDefaults fills in unset presentation fields and group colors
func ApplyDefaults(cfg *ConfigData) {
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Render.Size == 0 {
		cfg.Render.Size = DefaultSize
	}
	if cfg.Render.TickHours == 0 {
		cfg.Render.TickHours = DefaultTickHours
	}

	for i := range cfg.Groups {
		if cfg.Groups[i].Color == "" {
			cfg.Groups[i].Color = Palette[i%len(Palette)]
		}
	}
}

// Validate checks a configuration for problems and reports all of them at once
func Validate(cfg *ConfigData) error {
	var errs []error

	if len(cfg.Groups) == 0 {
		errs = append(errs, errors.New("at least one observation group is required"))
	}

	seen := make(map[string]bool)
	for i, g := range cfg.Groups {
		switch {
		case g.Name == "":
			errs = append(errs, fmt.Errorf("group %d: name is required", i))
		case seen[g.Name]:
			errs = append(errs, fmt.Errorf("group %q: duplicate name", g.Name))
		}
		seen[g.Name] = true

		if len(g.Observations) == 0 {
			errs = append(errs, fmt.Errorf("group %q: at least one observation is required", g.Name))
		}
		for j, v := range g.Observations {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, fmt.Errorf("group %q: observation %d is not a finite number", g.Name, j))
			}
		}

		if strings.ContainsAny(g.Color, "\"'<>&") {
			errs = append(errs, fmt.Errorf("group %q: color %q contains markup characters", g.Name, g.Color))
		}
	}

	if !validHour(cfg.Night.StartHour) {
		errs = append(errs, fmt.Errorf("night start_hour %v must be in [0,24)", cfg.Night.StartHour))
	}
	if !validHour(cfg.Night.EndHour) {
		errs = append(errs, fmt.Errorf("night end_hour %v must be in [0,24)", cfg.Night.EndHour))
	}

	if loc := cfg.Night.Location; loc != nil {
		if loc.Latitude < -90 || loc.Latitude > 90 {
			errs = append(errs, fmt.Errorf("latitude %v must be in [-90,90]", loc.Latitude))
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			errs = append(errs, fmt.Errorf("longitude %v must be in [-180,180]", loc.Longitude))
		}
		if _, err := time.Parse(time.DateOnly, loc.Date); err != nil {
			errs = append(errs, fmt.Errorf("location date %q must be YYYY-MM-DD", loc.Date))
		}
		if loc.Timezone != "" {
			if _, err := time.LoadLocation(loc.Timezone); err != nil {
				errs = append(errs, fmt.Errorf("unknown timezone %q", loc.Timezone))
			}
		}
	}

	if cfg.Render.Size <= 0 {
		errs = append(errs, fmt.Errorf("render size %d must be positive", cfg.Render.Size))
	}
	if cfg.Render.TickHours <= 0 || 24%cfg.Render.TickHours != 0 {
		errs = append(errs, fmt.Errorf("render tick_hours %d must divide 24", cfg.Render.TickHours))
	}

	return errors.Join(errs...)
}

func validHour(h float64) bool {
	return h >= 0 && h < 24
}

// Default returns the morning glory flowering dataset the flower clock was
// first drawn for: a 10L14D photoperiod with day, night and hybrid lines.
func Default() *ConfigData {
	cfg := &ConfigData{
		Title: "Morning glory flowering time (8-18h, 10L14D)",
		Night: DefaultNight(),
		Groups: []GroupData{
			{Name: "day", Color: "red", Observations: []float64{0.25, 0.260416667, 0.263888889}},
			{Name: "night", Color: "blue", Observations: []float64{0.791666667, 0.805555556, 0.791666667, 0.833333333, 0.798611111, 0.777777778, 0.819444444}},
			{Name: "hybrid", Color: "green", Observations: []float64{1.013888889, 0.996527778, 0.979166667, 0.996527778}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
