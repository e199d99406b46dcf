package domain

import "math"

// GenerateNextWeather picks the type that follows state.Type.
//
// Each authored edge weighs probability x seasonal modifier x the zone's
// per-type probability x the zone's change frequency, and one edge is drawn
// proportionally. Types without authored edges fall back to a uniform draw over
// every type. When the weights sum to zero or less the current type is kept.
func GenerateNextWeather(state WeatherState, cfg WeatherConfig, rng *Rand) WeatherType {
	edges := transitionTable[state.Type]
	if len(edges) == 0 {
		return WeatherType(rng.IntN(int(weatherTypeCount)))
	}

	weights := make([]float64, len(edges))
	total := 0.0
	for i, e := range edges {
		w := e.Probability * SeasonalModifier(e.To, state.Season) * cfg.Probability(e.To) * cfg.ChangeFrequency
		if w < 0 || math.IsNaN(w) {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return state.Type
	}

	draw := rng.Float64() * total
	cumulative := 0.0
	for i, e := range edges {
		cumulative += weights[i]
		if cumulative >= draw && weights[i] > 0 {
			return e.To
		}
	}
	// Float rounding can leave draw a hair above the final sum.
	for i := len(edges) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return edges[i].To
		}
	}
	return state.Type
}

// GenerateWeatherDuration returns how many minutes a new w should last:
// the type's base lifetime, stretched by the season, times a uniform variance
// in [0.5, 1.5]. The result is always at least one minute.
func GenerateWeatherDuration(w WeatherType, s Season, rng *Rand) int {
	minutes := float64(baseDurationMinutes(w)) * seasonalDurationFactor(w, s) * rng.Uniform(0.5, 1.5)
	d := int(math.Round(minutes))
	if d < 1 {
		return 1
	}
	return d
}

// RandomIntensity draws an intensity uniformly from Calm up to limit.
func RandomIntensity(rng *Rand, limit WeatherIntensity) WeatherIntensity {
	if !limit.Valid() {
		limit = Extreme
	}
	return WeatherIntensity(rng.IntN(int(limit) + 1))
}
