package domain

import (
	"strings"
	"unicode"
)

// WeatherType is the categorical atmospheric condition of a location.
type WeatherType uint8

const (
	Clear WeatherType = iota
	PartlyCloudy
	Cloudy
	LightRain
	HeavyRain
	Thunderstorm
	LightSnow
	HeavySnow
	Sleet
	Fog
	Windy
	Hot
	Cold
	MagicalStorm

	weatherTypeCount
)

// WeatherIntensity is the ordered severity of a weather type. Comparisons
// between intensities follow declaration order.
type WeatherIntensity uint8

const (
	Calm WeatherIntensity = iota
	Light
	Moderate
	Severe
	Extreme

	weatherIntensityCount
)

// Season cycles Spring -> Summer -> Autumn -> Winter -> Spring.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter

	seasonCount
)

// DisasterType is a catastrophic event layered on top of the weather.
type DisasterType uint8

const (
	NoDisaster DisasterType = iota
	Earthquake
	Flood
	Tornado
	Hurricane
	Blizzard
	Hailstorm
	Heatwave
	Sandstorm
	Wildfire
	VolcanicEruption

	disasterTypeCount
)

// WeatherPattern tags a zone's climate character. The zero value is Variable,
// which is also the pattern of an unconfigured zone.
type WeatherPattern uint8

const (
	PatternVariable WeatherPattern = iota
	PatternStable
	PatternSeasonal
	PatternMagical
	PatternExtreme

	weatherPatternCount
)

// Canonical wire names. Indexed literals keep each name next to its constant;
// TestEnumNamesExhaustive fails if a constant is added without a name.
var (
	weatherTypeNames = enumTable[WeatherType]{names: []string{
		Clear:        "Clear",
		PartlyCloudy: "Partly_Cloudy",
		Cloudy:       "Cloudy",
		LightRain:    "Light_Rain",
		HeavyRain:    "Heavy_Rain",
		Thunderstorm: "Thunderstorm",
		LightSnow:    "Light_Snow",
		HeavySnow:    "Heavy_Snow",
		Sleet:        "Sleet",
		Fog:          "Fog",
		Windy:        "Windy",
		Hot:          "Hot",
		Cold:         "Cold",
		MagicalStorm: "Magical_Storm",
	}}.build()

	weatherIntensityNames = enumTable[WeatherIntensity]{names: []string{
		Calm:     "Calm",
		Light:    "Light",
		Moderate: "Moderate",
		Severe:   "Severe",
		Extreme:  "Extreme",
	}}.build()

	seasonNames = enumTable[Season]{names: []string{
		Spring: "Spring",
		Summer: "Summer",
		Autumn: "Autumn",
		Winter: "Winter",
	}}.build()

	disasterTypeNames = enumTable[DisasterType]{names: []string{
		NoDisaster:       "None",
		Earthquake:       "Earthquake",
		Flood:            "Flood",
		Tornado:          "Tornado",
		Hurricane:        "Hurricane",
		Blizzard:         "Blizzard",
		Hailstorm:        "Hailstorm",
		Heatwave:         "Heatwave",
		Sandstorm:        "Sandstorm",
		Wildfire:         "Wildfire",
		VolcanicEruption: "Volcanic_Eruption",
	}}.build()

	weatherPatternNames = enumTable[WeatherPattern]{names: []string{
		PatternVariable: "Variable",
		PatternStable:   "Stable",
		PatternSeasonal: "Seasonal",
		PatternMagical:  "Magical",
		PatternExtreme:  "Extreme",
	}}.build()
)

type enumTable[T ~uint8] struct {
	names  []string
	lookup map[string]T
}

func (t enumTable[T]) build() enumTable[T] {
	t.lookup = make(map[string]T, len(t.names))
	for i, name := range t.names {
		t.lookup[normalizeEnumText(name)] = T(i)
	}
	return t
}

func (t enumTable[T]) name(v T) string {
	if int(v) < len(t.names) {
		return t.names[v]
	}
	return "Unknown"
}

func (t enumTable[T]) parse(s string) (T, bool) {
	v, ok := t.lookup[normalizeEnumText(s)]
	return v, ok
}

// normalizeEnumText folds case and treats spaces and hyphens as underscores,
// so "heavy rain", "HEAVY-RAIN" and "Heavy_Rain" all resolve alike.
// It must not read package-level vars: the enum tables call it while the
// package is still initializing.
func normalizeEnumText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return unicode.ToLower(r)
	}, strings.TrimSpace(s))
}

func (w WeatherType) String() string      { return weatherTypeNames.name(w) }
func (i WeatherIntensity) String() string { return weatherIntensityNames.name(i) }
func (s Season) String() string           { return seasonNames.name(s) }
func (d DisasterType) String() string     { return disasterTypeNames.name(d) }
func (p WeatherPattern) String() string   { return weatherPatternNames.name(p) }

// Display renders a type name for prose, e.g. Heavy_Rain -> "heavy rain".
func (w WeatherType) Display() string {
	return strings.ToLower(strings.ReplaceAll(w.String(), "_", " "))
}

// Display renders a disaster name for prose, e.g. Volcanic_Eruption -> "volcanic eruption".
func (d DisasterType) Display() string {
	return strings.ToLower(strings.ReplaceAll(d.String(), "_", " "))
}

// Valid reports whether w is one of the declared weather types.
func (w WeatherType) Valid() bool { return w < weatherTypeCount }

// Valid reports whether i is one of the declared intensities.
func (i WeatherIntensity) Valid() bool { return i < weatherIntensityCount }

// Next returns the season that follows s.
func (s Season) Next() Season { return (s + 1) % seasonCount }

// AllWeatherTypes returns every weather type in declaration order.
func AllWeatherTypes() []WeatherType {
	out := make([]WeatherType, 0, weatherTypeCount)
	for w := WeatherType(0); w < weatherTypeCount; w++ {
		out = append(out, w)
	}
	return out
}

// AllIntensities returns every intensity from Calm to Extreme.
func AllIntensities() []WeatherIntensity {
	out := make([]WeatherIntensity, 0, weatherIntensityCount)
	for i := WeatherIntensity(0); i < weatherIntensityCount; i++ {
		out = append(out, i)
	}
	return out
}

// AllSeasons returns the four seasons in calendar order.
func AllSeasons() []Season { return []Season{Spring, Summer, Autumn, Winter} }

// AllDisasterTypes returns every disaster type, NoDisaster included.
func AllDisasterTypes() []DisasterType {
	out := make([]DisasterType, 0, disasterTypeCount)
	for d := DisasterType(0); d < disasterTypeCount; d++ {
		out = append(out, d)
	}
	return out
}

// LookupWeatherType resolves a weather type name. ok is false for unknown text.
func LookupWeatherType(s string) (WeatherType, bool) { return weatherTypeNames.parse(s) }

// LookupIntensity resolves an intensity name. ok is false for unknown text.
func LookupIntensity(s string) (WeatherIntensity, bool) { return weatherIntensityNames.parse(s) }

// LookupSeason resolves a season name. ok is false for unknown text.
func LookupSeason(s string) (Season, bool) { return seasonNames.parse(s) }

// LookupDisasterType resolves a disaster name. ok is false for unknown text.
func LookupDisasterType(s string) (DisasterType, bool) { return disasterTypeNames.parse(s) }

// LookupPattern resolves a weather pattern name. ok is false for unknown text.
func LookupPattern(s string) (WeatherPattern, bool) { return weatherPatternNames.parse(s) }

// ParseWeatherType is the lenient form used for persisted records: unknown
// text yields Clear.
func ParseWeatherType(s string) WeatherType {
	w, _ := LookupWeatherType(s)
	return w
}

// ParseIntensity is the lenient form used for persisted records: unknown text
// yields Calm.
func ParseIntensity(s string) WeatherIntensity {
	i, _ := LookupIntensity(s)
	return i
}

// ParseSeason is the lenient form used for persisted records: unknown text
// yields Spring.
func ParseSeason(s string) Season {
	v, _ := LookupSeason(s)
	return v
}

// ParseDisasterType is the lenient form used for persisted records: unknown
// text yields NoDisaster.
func ParseDisasterType(s string) DisasterType {
	d, _ := LookupDisasterType(s)
	return d
}

// ParsePattern is the lenient form used for persisted records: unknown text
// yields PatternVariable.
func ParsePattern(s string) WeatherPattern {
	p, _ := LookupPattern(s)
	return p
}

func (w WeatherType) MarshalText() ([]byte, error)      { return []byte(w.String()), nil }
func (i WeatherIntensity) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (s Season) MarshalText() ([]byte, error)           { return []byte(s.String()), nil }
func (d DisasterType) MarshalText() ([]byte, error)     { return []byte(d.String()), nil }
func (p WeatherPattern) MarshalText() ([]byte, error)   { return []byte(p.String()), nil }

func (w *WeatherType) UnmarshalText(b []byte) error {
	*w = ParseWeatherType(string(b))
	return nil
}

func (i *WeatherIntensity) UnmarshalText(b []byte) error {
	*i = ParseIntensity(string(b))
	return nil
}

func (s *Season) UnmarshalText(b []byte) error {
	*s = ParseSeason(string(b))
	return nil
}

func (d *DisasterType) UnmarshalText(b []byte) error {
	*d = ParseDisasterType(string(b))
	return nil
}

func (p *WeatherPattern) UnmarshalText(b []byte) error {
	*p = ParsePattern(string(b))
	return nil
}
