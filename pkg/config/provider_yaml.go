package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

type configYAML struct {
	Title  string      `yaml:"title"`
	Night  *nightYAML  `yaml:"night,omitempty"`
	Render renderYAML  `yaml:"render,omitempty"`
	Groups []groupYAML `yaml:"groups"`
}

type nightYAML struct {
	StartHour *float64      `yaml:"start_hour,omitempty"`
	EndHour   *float64      `yaml:"end_hour,omitempty"`
	Location  *locationYAML `yaml:"location,omitempty"`
}

type locationYAML struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Date      string  `yaml:"date"`
	Timezone  string  `yaml:"timezone,omitempty"`
}

type renderYAML struct {
	Size      int `yaml:"size,omitempty"`
	TickHours int `yaml:"tick_hours,omitempty"`
}

type groupYAML struct {
	Name         string            `yaml:"name"`
	Color        string            `yaml:"color,omitempty"`
	Observations []observationYAML `yaml:"observations"`
}

// observationYAML accepts either a fractional day (0.25) or a clock
// time string ("06:00" or "06:00:30").
type observationYAML float64

func (o *observationYAML) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: observation must be a number or HH:MM time", value.Line)
	}

	if value.Tag == "!!str" {
		v, err := ParseClockTime(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*o = observationYAML(v)
		return nil
	}

	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*o = observationYAML(f)
	return nil
}

// ParseClockTime converts an HH:MM or HH:MM:SS clock time to a fractional day
func ParseClockTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM or HH:MM:SS", s)
	}

	limits := []int{24, 60, 60}
	var seconds int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		seconds = seconds*60 + n
	}
	if len(parts) == 2 {
		seconds *= 60
	}

	return float64(seconds) / 86400, nil
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document to ConfigData with defaults applied
func ParseYAML(data []byte) (*ConfigData, error) {
	var doc configYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Title: doc.Title,
		Night: DefaultNight(),
		Render: RenderData{
			Size:      doc.Render.Size,
			TickHours: doc.Render.TickHours,
		},
		Groups: make([]GroupData, len(doc.Groups)),
	}

	if doc.Night != nil {
		if doc.Night.StartHour != nil {
			config.Night.StartHour = *doc.Night.StartHour
		}
		if doc.Night.EndHour != nil {
			config.Night.EndHour = *doc.Night.EndHour
		}
		if loc := doc.Night.Location; loc != nil {
			config.Night.Location = &LocationData{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Date:      loc.Date,
				Timezone:  loc.Timezone,
			}
		}
	}

	for i, group := range doc.Groups {
		obs := make([]float64, len(group.Observations))
		for j, o := range group.Observations {
			obs[j] = float64(o)
		}
		config.Groups[i] = GroupData{
			Name:         group.Name,
			Color:        group.Color,
			Observations: obs,
		}
	}

	ApplyDefaults(config)
	return config, nil
}

// GetGroups returns the observation groups
func (y *YAMLProvider) GetGroups() ([]GroupData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Groups, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}
