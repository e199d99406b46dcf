package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDisasterProbability(t *testing.T) {
	tests := []struct {
		name  string
		state WeatherState
		want  float64
	}{
		{"calm clear", WeatherState{Type: Clear, Intensity: Calm}, 0.001},
		{"moderate rain", WeatherState{Type: HeavyRain, Intensity: Moderate}, 0.01},
		{"severe thunderstorm doubles", WeatherState{Type: Thunderstorm, Intensity: Severe}, 0.10},
		{"extreme magical storm doubles", WeatherState{Type: MagicalStorm, Intensity: Extreme}, 0.30},
		{"active disaster blocks", WeatherState{Type: Thunderstorm, Intensity: Extreme, Disaster: Flood}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateDisasterProbability(tt.state), 1e-9)
		})
	}
}

func TestSelectDisasterType(t *testing.T) {
	rng := NewRand(21)

	t.Run("heavy snow yields blizzard or hailstorm", func(t *testing.T) {
		for range 200 {
			d := SelectDisasterType(WeatherState{Type: HeavySnow, Intensity: Moderate}, Winter, rng)
			assert.Contains(t, []DisasterType{Blizzard, Hailstorm}, d)
		}
	})

	t.Run("hurricane only late in the year", func(t *testing.T) {
		state := WeatherState{Type: HeavyRain, Intensity: Severe}
		for range 300 {
			assert.NotEqual(t, Hurricane, SelectDisasterType(state, Spring, rng))
		}
		seen := false
		for range 300 {
			if SelectDisasterType(state, Summer, rng) == Hurricane {
				seen = true
				break
			}
		}
		assert.True(t, seen)
	})

	t.Run("calm windy has no candidates", func(t *testing.T) {
		for range 300 {
			d := SelectDisasterType(WeatherState{Type: Windy, Intensity: Moderate}, Autumn, rng)
			assert.Contains(t, []DisasterType{NoDisaster, Earthquake}, d)
		}
	})
}

func TestIsDisasterCompatible(t *testing.T) {
	calm := WeatherState{Type: Clear, Intensity: Calm}
	assert.True(t, IsDisasterCompatible(Earthquake, calm, Spring))
	assert.True(t, IsDisasterCompatible(VolcanicEruption, calm, Spring))
	assert.True(t, IsDisasterCompatible(NoDisaster, calm, Spring))
	assert.False(t, IsDisasterCompatible(Flood, calm, Spring))
	assert.True(t, IsDisasterCompatible(Flood, WeatherState{Type: HeavyRain}, Spring))
	assert.False(t, IsDisasterCompatible(Heatwave, WeatherState{Type: Hot, Intensity: Light}, Summer))
	assert.True(t, IsDisasterCompatible(Heatwave, WeatherState{Type: Hot, Intensity: Severe}, Summer))
}

func TestDisasterDuration(t *testing.T) {
	rng := NewRand(4)
	for _, d := range AllDisasterTypes() {
		got := DisasterDuration(d, rng)
		if d == NoDisaster {
			assert.Zero(t, got)
			continue
		}
		base := float64(disasterBaseMinutes[d])
		require.Positive(t, got, d.String())
		assert.GreaterOrEqual(t, float64(got), base*0.5-1, d.String())
		assert.LessOrEqual(t, float64(got), base*1.5+1, d.String())
	}
}

func TestDescribeDisaster(t *testing.T) {
	for _, d := range AllDisasterTypes() {
		assert.NotEmpty(t, DescribeDisaster(d))
	}
	assert.Equal(t, DescribeDisaster(NoDisaster), DescribeDisaster(DisasterType(77)))
}

func TestDescribeWeather(t *testing.T) {
	for _, w := range AllWeatherTypes() {
		for _, i := range AllIntensities() {
			assert.NotEmpty(t, DescribeWeather(WeatherState{Type: w, Intensity: i}))
		}
	}
	assert.Equal(t, "Heavy snow is falling.", DescribeWeather(WeatherState{Type: HeavySnow, Intensity: Moderate}))
}
