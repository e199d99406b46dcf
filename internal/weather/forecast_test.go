package weather

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetForecast_Shape(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetGlobalWeather(domain.Fog, domain.Severe)

	for _, hours := range []int{1, 4, 5, 12, 24, 48, 100} {
		f := e.GetForecast(domain.GlobalLocation, hours)
		require.Len(t, f, int(math.Ceil(float64(hours)/4)), "hours=%d", hours)

		assert.Equal(t, domain.Fog, f[0].Type)
		assert.InDelta(t, 0.9, f[0].Confidence, 1e-9)
		for i, entry := range f {
			assert.Equal(t, i*4, entry.HoursAhead)
			assert.Equal(t, domain.Moderate, entry.Intensity)
			assert.GreaterOrEqual(t, entry.Confidence, 0.1)
			assert.LessOrEqual(t, entry.Confidence, 1.0)
			if i > 0 {
				assert.LessOrEqual(t, entry.Confidence, f[i-1].Confidence)
			}
		}
	}
}

func TestGetForecast_ConfidenceFloor(t *testing.T) {
	e, _ := newTestEngine(t)
	f := e.GetForecast(domain.GlobalLocation, 200)
	assert.InDelta(t, 0.1, f[len(f)-1].Confidence, 1e-9)
}

func TestGetForecast_HighConfidenceStepsEchoCurrent(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetGlobalWeather(domain.Hot, domain.Light)
	f := e.GetForecast(domain.GlobalLocation, 12)
	require.Len(t, f, 3)
	// 0.9, 0.72, 0.576 all stay above the regeneration threshold
	for _, entry := range f {
		assert.Equal(t, domain.Hot, entry.Type)
	}
}

func TestGetForecast_NonPositiveHorizon(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.Empty(t, e.GetForecast(domain.GlobalLocation, 0))
	assert.Empty(t, e.GetForecast(domain.GlobalLocation, -3))
}

func TestGetForecast_CachedUntilMutation(t *testing.T) {
	e, clk := newTestEngine(t)

	first := e.GetForecast("z", 48)
	clk.Advance(2 * time.Hour)
	second := e.GetForecast("z", 48)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
		assert.Equal(t, first[i].Time.Add(2*time.Hour), second[i].Time)
	}
	assert.Equal(t, 1, e.forecasts.len())

	e.SetGlobalWeather(domain.Cloudy, domain.Light)
	assert.Zero(t, e.forecasts.len())
	assert.Equal(t, domain.Cloudy, e.GetForecast("z", 48)[0].Type)
}

func TestGetWeatherReport(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetZoneConfig("z", overrideConfig())
	e.SetZoneWeather("z", domain.HeavyRain, domain.Severe)
	_, err := e.TriggerDisaster("z", domain.Flood, 120)
	require.NoError(t, err)

	r := e.GetWeatherReport("z")
	assert.Equal(t, "z", r.Location)
	assert.Equal(t, "Severe Heavy_Rain", r.Summary)
	assert.Equal(t, domain.Spring, r.Season)
	assert.Equal(t, domain.Flood, r.Disaster)
	assert.NotEmpty(t, r.DisasterText)
	require.Len(t, r.Forecast, 3)
	assert.Equal(t, []int{0, 4, 8}, []int{r.Forecast[0].HoursAhead, r.Forecast[1].HoursAhead, r.Forecast[2].HoursAhead})

	text := r.Text()
	assert.True(t, strings.HasPrefix(text, r.Description))
	assert.Contains(t, text, "Conditions: Severe Heavy_Rain (Spring)")
	assert.Contains(t, text, "WARNING:")
	assert.Contains(t, text, "+8h")
}
