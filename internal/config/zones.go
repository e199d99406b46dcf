package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// ZonesFile is the YAML document naming the zones configured at startup.
//
//	season: Autumn
//	zones:
//	  - id: frostpeak
//	    pattern: Seasonal
//	    override_global: true
//	    max_intensity: Extreme
//	    type_probabilities: {Heavy_Snow: 2.0}
//	    initial: {type: Heavy_Snow, intensity: Moderate}
type ZonesFile struct {
	Season string     `yaml:"season,omitempty"`
	Global *Condition `yaml:"global,omitempty"`
	Zones  []ZoneSpec `yaml:"zones"`
}

// ZoneSpec configures one zone.
// The same shape is accepted as JSON by the admin API.
type ZoneSpec struct {
	ID                string             `yaml:"id" json:"id,omitempty"`
	Pattern           string             `yaml:"pattern" json:"pattern"`
	OverrideGlobal    bool               `yaml:"override_global" json:"override_global"`
	ChangeFrequency   *float64           `yaml:"change_frequency,omitempty" json:"change_frequency,omitempty"`
	MaxIntensity      string             `yaml:"max_intensity,omitempty" json:"max_intensity,omitempty"`
	TypeProbabilities map[string]float64 `yaml:"type_probabilities,omitempty" json:"type_probabilities,omitempty"`
	Initial           *Condition         `yaml:"initial,omitempty" json:"initial,omitempty"`
}

// Condition is a weather type and intensity by name.
type Condition struct {
	Type      string `yaml:"type" json:"type"`
	Intensity string `yaml:"intensity" json:"intensity"`
}

// Zones is a validated ZonesFile resolved to domain values.
type Zones struct {
	Season    domain.Season
	HasSeason bool
	Global    *ResolvedCondition
	Zones     []ZoneSetting
}

// ZoneSetting is one resolved zone.
type ZoneSetting struct {
	ID      string
	Config  domain.WeatherConfig
	Initial *ResolvedCondition
}

// ResolvedCondition is a Condition resolved to enum values.
type ResolvedCondition struct {
	Type      domain.WeatherType
	Intensity domain.WeatherIntensity
}

// LoadZones reads and validates the zones file at path. An empty path yields
// no zones.
func LoadZones(path string) (Zones, error) {
	if strings.TrimSpace(path) == "" {
		return Zones{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Zones{}, fmt.Errorf("read zones file: %w", err)
	}
	var f ZonesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Zones{}, fmt.Errorf("zones file %s: %w", path, err)
	}
	f.Normalize()
	z, err := f.Resolve()
	if err != nil {
		return Zones{}, fmt.Errorf("zones file %s: %w", path, err)
	}
	return z, nil
}

// Normalize trims names and fills optional fields with their defaults.
func (f *ZonesFile) Normalize() {
	f.Season = strings.TrimSpace(f.Season)
	for i := range f.Zones {
		f.Zones[i].Normalize()
	}
}

// Normalize trims the id and fills unset fields with the default config's
// values.
func (z *ZoneSpec) Normalize() {
	z.ID = strings.TrimSpace(z.ID)
	z.Pattern = strings.TrimSpace(z.Pattern)
	if z.Pattern == "" {
		z.Pattern = domain.PatternVariable.String()
	}
	if z.ChangeFrequency == nil {
		one := 1.0
		z.ChangeFrequency = &one
	}
	if strings.TrimSpace(z.MaxIntensity) == "" {
		z.MaxIntensity = domain.Extreme.String()
	}
}

// Resolve validates every name and converts the file to domain values. Unlike
// persisted records, unknown names here are errors with a suggestion.
func (f ZonesFile) Resolve() (Zones, error) {
	var out Zones
	if f.Season != "" {
		s, err := domain.StrictSeason(f.Season)
		if err != nil {
			return Zones{}, err
		}
		out.Season, out.HasSeason = s, true
	}
	if f.Global != nil {
		c, err := f.Global.Resolve()
		if err != nil {
			return Zones{}, fmt.Errorf("global: %w", err)
		}
		out.Global = &c
	}

	seen := make(map[string]bool, len(f.Zones))
	for i, z := range f.Zones {
		switch {
		case z.ID == "":
			return Zones{}, fmt.Errorf("zones[%d]: id is required", i)
		case z.ID == domain.GlobalLocation:
			return Zones{}, fmt.Errorf("zones[%d]: id %q is reserved", i, z.ID)
		case seen[z.ID]:
			return Zones{}, fmt.Errorf("zones[%d]: duplicate id %q", i, z.ID)
		}
		seen[z.ID] = true

		setting, err := z.Resolve()
		if err != nil {
			return Zones{}, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		out.Zones = append(out.Zones, setting)
	}
	return out, nil
}

// Resolve validates a normalized zone entry and converts it to a ZoneSetting.
func (z ZoneSpec) Resolve() (ZoneSetting, error) {
	pattern, err := domain.StrictPattern(z.Pattern)
	if err != nil {
		return ZoneSetting{}, err
	}
	maxIntensity, err := domain.StrictIntensity(z.MaxIntensity)
	if err != nil {
		return ZoneSetting{}, err
	}
	cfg := domain.DefaultWeatherConfig()
	cfg.Pattern = pattern
	cfg.OverrideGlobal = z.OverrideGlobal
	cfg.MaxIntensity = maxIntensity
	if z.ChangeFrequency != nil {
		if *z.ChangeFrequency < 0 {
			return ZoneSetting{}, errors.New("change_frequency must not be negative")
		}
		cfg.ChangeFrequency = *z.ChangeFrequency
	}
	for name, p := range z.TypeProbabilities {
		w, err := domain.StrictWeatherType(name)
		if err != nil {
			return ZoneSetting{}, fmt.Errorf("type_probabilities: %w", err)
		}
		if p < 0 {
			return ZoneSetting{}, fmt.Errorf("type_probabilities: %s must not be negative", w)
		}
		if cfg.TypeProbabilities == nil {
			cfg.TypeProbabilities = make(map[domain.WeatherType]float64)
		}
		cfg.TypeProbabilities[w] = p
	}

	setting := ZoneSetting{ID: z.ID, Config: cfg}
	if z.Initial != nil {
		c, err := z.Initial.Resolve()
		if err != nil {
			return ZoneSetting{}, fmt.Errorf("initial: %w", err)
		}
		setting.Initial = &c
	}
	return setting, nil
}

// Resolve looks up the condition's names.
func (c Condition) Resolve() (ResolvedCondition, error) {
	t, err := domain.StrictWeatherType(c.Type)
	if err != nil {
		return ResolvedCondition{}, err
	}
	i, err := domain.StrictIntensity(c.Intensity)
	if err != nil {
		return ResolvedCondition{}, err
	}
	return ResolvedCondition{Type: t, Intensity: i}, nil
}
