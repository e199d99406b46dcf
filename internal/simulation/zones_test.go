package simulation

import (
	"testing"

	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func testZones() config.Zones {
	cfg := domain.DefaultWeatherConfig()
	cfg.OverrideGlobal = true
	cfg.Pattern = domain.PatternSeasonal
	return config.Zones{
		Season:    domain.Winter,
		HasSeason: true,
		Global:    &config.ResolvedCondition{Type: domain.Cloudy, Intensity: domain.Light},
		Zones: []config.ZoneSetting{{
			ID:      "frostpeak",
			Config:  cfg,
			Initial: &config.ResolvedCondition{Type: domain.HeavySnow, Intensity: domain.Moderate},
		}},
	}
}

func TestApplyZones_Fresh(t *testing.T) {
	e := weather.New(domain.NewRand(5), weather.WithClock(clockwork.NewFakeClockAt(testStart)))
	ApplyZones(e, testZones(), false)

	assert.Equal(t, domain.Winter, e.Season())
	assert.Equal(t, domain.Cloudy, e.GlobalWeather().Type)
	assert.Equal(t, domain.PatternSeasonal, e.GetZoneConfig("frostpeak").Pattern)
	assert.Equal(t, domain.HeavySnow, e.GetZoneWeather("frostpeak").Type)
	assert.Equal(t, domain.Winter, e.GetZoneWeather("frostpeak").Season)
}

func TestApplyZones_RestoredKeepsState(t *testing.T) {
	e := weather.New(domain.NewRand(5), weather.WithClock(clockwork.NewFakeClockAt(testStart)))
	ApplyZones(e, testZones(), true)

	assert.Equal(t, domain.Spring, e.Season())
	assert.Equal(t, domain.Clear, e.GlobalWeather().Type)
	assert.Equal(t, domain.PatternSeasonal, e.GetZoneConfig("frostpeak").Pattern)
}

func TestApplyZones_Empty(t *testing.T) {
	e := weather.New(domain.NewRand(5), weather.WithClock(clockwork.NewFakeClockAt(testStart)))
	ApplyZones(e, config.Zones{}, false)

	assert.Empty(t, e.Zones())
	assert.Equal(t, domain.Spring, e.Season())
}
