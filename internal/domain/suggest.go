package domain

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// UnknownNameError reports enum text that matched no canonical name. Suggestion
// holds the closest canonical name when one is within edit distance.
type UnknownNameError struct {
	Kind       string
	Input      string
	Suggestion string
}

func (e *UnknownNameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s %q (did you mean %s?)", e.Kind, e.Input, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Input)
}

// StrictWeatherType resolves admin input, failing with a suggestion instead of
// defaulting like ParseWeatherType.
func StrictWeatherType(s string) (WeatherType, error) {
	if w, ok := LookupWeatherType(s); ok {
		return w, nil
	}
	return Clear, unknownName("weather type", s, weatherTypeNames.names)
}

// StrictIntensity resolves admin input for an intensity.
func StrictIntensity(s string) (WeatherIntensity, error) {
	if i, ok := LookupIntensity(s); ok {
		return i, nil
	}
	return Calm, unknownName("intensity", s, weatherIntensityNames.names)
}

// StrictSeason resolves admin input for a season.
func StrictSeason(s string) (Season, error) {
	if v, ok := LookupSeason(s); ok {
		return v, nil
	}
	return Spring, unknownName("season", s, seasonNames.names)
}

// StrictDisasterType resolves admin input for a disaster type.
func StrictDisasterType(s string) (DisasterType, error) {
	if d, ok := LookupDisasterType(s); ok {
		return d, nil
	}
	return NoDisaster, unknownName("disaster type", s, disasterTypeNames.names)
}

// StrictPattern resolves admin input for a weather pattern.
func StrictPattern(s string) (WeatherPattern, error) {
	if p, ok := LookupPattern(s); ok {
		return p, nil
	}
	return PatternVariable, unknownName("weather pattern", s, weatherPatternNames.names)
}

func unknownName(kind, input string, names []string) error {
	return &UnknownNameError{Kind: kind, Input: input, Suggestion: closestName(input, names)}
}

// closestName returns the canonical name nearest to input, or "" when nothing
// is close enough to be a plausible typo.
func closestName(input string, names []string) string {
	compare := normalizeEnumText(input)
	if compare == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, name := range names {
		dist := levenshtein.ComputeDistance(compare, normalizeEnumText(name))
		if dist > suggestionLimit(len(name)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = name, dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
