package domain

import (
	"fmt"
	"time"
)

// GlobalLocation is the reserved location id of the shared global weather.
const GlobalLocation = "global"

// WeatherState is the current condition of one location plus its timing.
// Durations are simulation minutes.
type WeatherState struct {
	Type                     WeatherType      `json:"type"`
	Intensity                WeatherIntensity `json:"intensity"`
	Season                   Season           `json:"season"`
	Disaster                 DisasterType     `json:"disaster"`
	LastChange               time.Time        `json:"last_change"`
	DurationMinutes          int              `json:"duration_minutes"`
	PredictedDurationMinutes int              `json:"predicted_duration_minutes"`
	DisasterRemainingMinutes int              `json:"disaster_remaining_minutes"`
}

// DefaultWeatherState is the condition every engine starts with.
func DefaultWeatherState(season Season, now time.Time) WeatherState {
	return WeatherState{
		Type:                     Clear,
		Intensity:                Calm,
		Season:                   season,
		LastChange:               now,
		PredictedDurationMinutes: baseDurationMinutes(Clear),
	}
}

// Due reports whether the elapsed duration has met the predicted duration.
func (s WeatherState) Due() bool {
	return s.DurationMinutes >= s.PredictedDurationMinutes
}

// Summary renders the condition compactly, e.g. "Severe Heavy_Snow".
func (s WeatherState) Summary() string {
	return fmt.Sprintf("%s %s", s.Intensity, s.Type)
}

// WeatherConfig is a zone's weather policy. The zero value is not the default;
// use DefaultWeatherConfig.
type WeatherConfig struct {
	Pattern           WeatherPattern          `json:"pattern"`
	OverrideGlobal    bool                    `json:"override_global"`
	TypeProbabilities map[WeatherType]float64 `json:"type_probabilities,omitempty"`
	ChangeFrequency   float64                 `json:"change_frequency"`
	MaxIntensity      WeatherIntensity        `json:"max_intensity"`
}

// DefaultWeatherConfig is the policy of an unconfigured zone:
// Variable, not overriding global, frequency 1.0, intensity up to Extreme.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		Pattern:         PatternVariable,
		ChangeFrequency: 1.0,
		MaxIntensity:    Extreme,
	}
}

// Probability returns the zone's multiplier for transitions into w. Types
// without an override weigh 1.0.
func (c WeatherConfig) Probability(w WeatherType) float64 {
	if p, ok := c.TypeProbabilities[w]; ok {
		return p
	}
	return 1.0
}

// Clone returns a copy that shares no map with c.
func (c WeatherConfig) Clone() WeatherConfig {
	if c.TypeProbabilities == nil {
		return c
	}
	probs := make(map[WeatherType]float64, len(c.TypeProbabilities))
	for k, v := range c.TypeProbabilities {
		probs[k] = v
	}
	c.TypeProbabilities = probs
	return c
}

// WeatherTransition is one authored edge of the transition table. Message is
// flavor text kept for callers; the engine never emits it on its own.
type WeatherTransition struct {
	From           WeatherType
	To             WeatherType
	Probability    float64
	TypicalMinutes int
	Message        string
}

// ForecastEntry is one step of a forecast.
type ForecastEntry struct {
	HoursAhead int              `json:"hours_ahead"`
	Time       time.Time        `json:"time"`
	Type       WeatherType      `json:"type"`
	Intensity  WeatherIntensity `json:"intensity"`
	Confidence float64          `json:"confidence"`
}
