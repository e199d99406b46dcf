package weather

import (
	"math"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

const (
	forecastStepHours       = 4
	forecastStartConf       = 0.9
	forecastDecay           = 0.8
	forecastMinConf         = 0.1
	forecastRegenerateBelow = 0.5
)

// GetForecast predicts the weather in zone every four hours from now up to,
// but not including, now+hours. The first entry echoes the current type.
// Confidence starts at 0.9 and decays by 0.8 per step, never below 0.1; once
// it drops under 0.5 each step draws a fresh transition from the previous
// prediction. Predicted intensity is always Moderate.
//
// Forecasts are generated once per (zone, hours) and reused until the next
// mutation, so repeated queries agree.
func (e *Engine) GetForecast(zone string, hours int) []domain.ForecastEntry {
	if hours <= 0 {
		return nil
	}
	key := forecastKey(zone, hours)
	steps, ok := e.forecasts.get(key)
	if !ok {
		steps = e.generateForecast(zone, hours)
		e.forecasts.put(key, steps)
	}

	now := e.clock.Now()
	out := make([]domain.ForecastEntry, len(steps))
	for i, s := range steps {
		out[i] = domain.ForecastEntry{
			HoursAhead: s.hoursAhead,
			Time:       now.Add(time.Duration(s.hoursAhead) * time.Hour),
			Type:       s.weather,
			Intensity:  s.intensity,
			Confidence: s.confidence,
		}
	}
	return out
}

func (e *Engine) generateForecast(zone string, hours int) []forecastStep {
	current := e.GetZoneWeather(zone)
	cfg := domain.DefaultWeatherConfig()
	if zone != domain.GlobalLocation && e.configs[zone].OverrideGlobal {
		cfg = e.configs[zone]
	}

	n := int(math.Ceil(float64(hours) / forecastStepHours))
	steps := make([]forecastStep, 0, n)
	predicted := current.Type
	confidence := forecastStartConf
	for i := 0; i < n; i++ {
		if i > 0 {
			confidence = math.Max(forecastMinConf, confidence*forecastDecay)
			if confidence < forecastRegenerateBelow {
				synthetic := domain.WeatherState{
					Type:      predicted,
					Intensity: domain.Moderate,
					Season:    e.season,
				}
				predicted = domain.GenerateNextWeather(synthetic, cfg, e.rng)
			}
		}
		steps = append(steps, forecastStep{
			hoursAhead: i * forecastStepHours,
			weather:    predicted,
			intensity:  domain.Moderate,
			confidence: confidence,
		})
	}
	return steps
}
