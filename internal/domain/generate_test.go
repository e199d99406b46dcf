package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNextWeather_DeterministicForSeed(t *testing.T) {
	state := WeatherState{Type: Cloudy, Intensity: Moderate, Season: Autumn}
	cfg := DefaultWeatherConfig()

	sequence := func(seed int64) []WeatherType {
		rng := NewRand(seed)
		s := state
		out := make([]WeatherType, 0, 50)
		for range 50 {
			s.Type = GenerateNextWeather(s, cfg, rng)
			out = append(out, s.Type)
		}
		return out
	}

	assert.Equal(t, sequence(42), sequence(42))
	assert.NotEqual(t, sequence(42), sequence(43))
}

func TestGenerateNextWeather_ZeroWeightKeepsType(t *testing.T) {
	rng := NewRand(1)

	t.Run("zero change frequency", func(t *testing.T) {
		cfg := DefaultWeatherConfig()
		cfg.ChangeFrequency = 0
		for _, w := range AllWeatherTypes() {
			state := WeatherState{Type: w, Season: Summer}
			assert.Equal(t, w, GenerateNextWeather(state, cfg, rng))
		}
	})

	t.Run("every target suppressed", func(t *testing.T) {
		cfg := DefaultWeatherConfig()
		cfg.TypeProbabilities = make(map[WeatherType]float64)
		for _, w := range AllWeatherTypes() {
			cfg.TypeProbabilities[w] = 0
		}
		state := WeatherState{Type: Fog, Season: Winter}
		assert.Equal(t, Fog, GenerateNextWeather(state, cfg, rng))
	})
}

func TestGenerateNextWeather_OnlyAuthoredTargets(t *testing.T) {
	rng := NewRand(7)
	cfg := DefaultWeatherConfig()
	allowed := make(map[WeatherType]bool)
	for _, e := range Transitions(HeavySnow) {
		allowed[e.To] = true
	}
	for range 500 {
		got := GenerateNextWeather(WeatherState{Type: HeavySnow, Season: Winter}, cfg, rng)
		require.True(t, allowed[got], "unexpected transition to %s", got)
	}
}

func TestGenerateNextWeather_ZoneProbabilityForcesTarget(t *testing.T) {
	rng := NewRand(9)
	cfg := DefaultWeatherConfig()
	cfg.TypeProbabilities = map[WeatherType]float64{}
	for _, e := range Transitions(Clear) {
		cfg.TypeProbabilities[e.To] = 0
	}
	cfg.TypeProbabilities[Fog] = 1
	for range 100 {
		assert.Equal(t, Fog, GenerateNextWeather(WeatherState{Type: Clear, Season: Spring}, cfg, rng))
	}
}

func TestGenerateNextWeather_UnknownTypeFallsBackToUniform(t *testing.T) {
	rng := NewRand(3)
	for range 100 {
		got := GenerateNextWeather(WeatherState{Type: WeatherType(99)}, DefaultWeatherConfig(), rng)
		assert.True(t, got.Valid())
	}
}

func TestGenerateWeatherDuration(t *testing.T) {
	rng := NewRand(11)

	t.Run("always positive and within variance", func(t *testing.T) {
		for _, w := range AllWeatherTypes() {
			for _, s := range AllSeasons() {
				d := GenerateWeatherDuration(w, s, rng)
				base := float64(baseDurationMinutes(w)) * seasonalDurationFactor(w, s)
				assert.Positive(t, d)
				assert.GreaterOrEqual(t, float64(d), base*0.5-1)
				assert.LessOrEqual(t, float64(d), base*1.5+1)
			}
		}
	})

	t.Run("winter cold outlasts spring cold", func(t *testing.T) {
		const samples = 2000
		var winter, spring int
		for range samples {
			winter += GenerateWeatherDuration(Cold, Winter, rng)
			spring += GenerateWeatherDuration(Cold, Spring, rng)
		}
		assert.GreaterOrEqual(t, winter/samples, spring/samples)
	})
}

func TestRandomIntensity_RespectsCap(t *testing.T) {
	rng := NewRand(5)
	seen := make(map[WeatherIntensity]bool)
	for range 1000 {
		i := RandomIntensity(rng, Moderate)
		require.LessOrEqual(t, i, Moderate)
		seen[i] = true
	}
	assert.Len(t, seen, 3)
}

func TestTransitionProbability(t *testing.T) {
	assert.InDelta(t, 0.10*2.0, TransitionProbability(Clear, Hot, Summer), 1e-9)
	assert.InDelta(t, 0.10, TransitionProbability(Clear, Hot, Autumn)*2, 1e-9)
	assert.InDelta(t, 0.1, TransitionProbability(Clear, MagicalStorm, Spring), 1e-9)
}

func TestSeasonalModifier_DefaultsToOne(t *testing.T) {
	assert.Equal(t, 1.0, SeasonalModifier(MagicalStorm, Winter))
	assert.Equal(t, 2.0, SeasonalModifier(Hot, Summer))
	assert.Equal(t, 1.5, SeasonalModifier(LightRain, Spring))
}

func TestTransitionTable_EveryTypeAuthored(t *testing.T) {
	for _, w := range AllWeatherTypes() {
		edges := Transitions(w)
		require.NotEmpty(t, edges, w.String())
		for _, e := range edges {
			assert.Equal(t, w, e.From)
			assert.Positive(t, e.Probability)
			assert.NotEmpty(t, e.Message)
		}
	}
}
