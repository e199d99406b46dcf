package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChange() WeatherChange {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	before := WeatherState{Type: Cloudy, Intensity: Light, Season: Spring, PredictedDurationMinutes: 120}
	after := WeatherState{Type: HeavyRain, Intensity: Severe, Season: Spring, PredictedDurationMinutes: 60, LastChange: at}
	return NewWeatherChange(ChangeWeather, "midgaard", before, after, at, 7)
}

func TestEnrichWeatherChange(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 8, 0, 1, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	c := EnrichWeatherChange(testChange())

	assert.True(t, strings.HasPrefix(c.ID, "weather-"), c.ID)
	assert.Equal(t, fixed, c.ProcessedAt)
	assert.Equal(t, DeriveEffects(HeavyRain, Severe), c.Effects)
	assert.Equal(t, DescribeWeather(c.After), c.Description)

	again := EnrichWeatherChange(testChange())
	assert.Equal(t, c.ID, again.ID, "IDs are deterministic")

	other := testChange()
	other.Seq = 8
	assert.NotEqual(t, c.ID, EnrichWeatherChange(other).ID)
}

func TestEnrichWeatherChange_DisasterDescription(t *testing.T) {
	c := testChange()
	c.Kind = ChangeDisaster
	c.After.Disaster = Flood
	c = EnrichWeatherChange(c)
	assert.Equal(t, DescribeDisaster(Flood), c.Description)
	assert.True(t, strings.HasPrefix(c.ID, "disaster-"))
}

func TestSerializeWeatherChange(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	c := EnrichWeatherChange(testChange())
	out, err := SerializeWeatherChange(c)
	require.NoError(t, err)

	assert.Equal(t, []byte("midgaard"), out.Key)
	assert.Equal(t, c.ID, out.Headers["change_id"])
	assert.Equal(t, "weather", out.Headers["change_kind"])
	assert.Equal(t, "Heavy_Rain", out.Headers["weather_type"])
	assert.Equal(t, "2026-03-01T09:00:00Z", out.Headers["processed_at"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, "midgaard", decoded["location"])
	after := decoded["after"].(map[string]any)
	assert.Equal(t, "Heavy_Rain", after["type"])
	assert.Equal(t, "Severe", after["intensity"])
	effects := decoded["effects"].(map[string]any)
	assert.Contains(t, effects, "visibility_modifier")
	assert.Equal(t, true, effects["blocks_ranged"])
}
