package domain

import "math"

// baseDisasterProbability is the per-check chance of a disaster by intensity.
var baseDisasterProbability = [...]float64{
	Calm:     0.001,
	Light:    0.005,
	Moderate: 0.01,
	Severe:   0.05,
	Extreme:  0.15,
}

// earthquakeChance is the flat chance of an earthquake when the weather
// itself suggests no disaster.
const earthquakeChance = 0.01

// IsExtremeWeather reports whether w doubles the disaster probability.
func IsExtremeWeather(w WeatherType) bool {
	switch w {
	case Thunderstorm, HeavySnow, Hot, Cold, MagicalStorm:
		return true
	default:
		return false
	}
}

// CalculateDisasterProbability returns the chance that a disaster starts
// under state. Extreme weather doubles the intensity base; a location with an
// active disaster never rolls another.
func CalculateDisasterProbability(state WeatherState) float64 {
	if state.Disaster != NoDisaster {
		return 0
	}
	p := 0.0
	if state.Intensity.Valid() {
		p = baseDisasterProbability[state.Intensity]
	}
	if IsExtremeWeather(state.Type) {
		p *= 2
	}
	return p
}

// disasterCandidates lists the disasters the weather in state can produce.
//
//	Heavy_Rain, Thunderstorm -> Flood, Tornado (+ Hurricane in Summer/Autumn)
//	Heavy_Snow               -> Blizzard, Hailstorm
//	Windy, Severe+           -> Tornado, Hurricane
//	Hot, Severe+             -> Heatwave, Sandstorm (+ Wildfire in Summer/Autumn)
//	Cold, Severe+            -> Blizzard
func disasterCandidates(state WeatherState, season Season) []DisasterType {
	severe := state.Intensity >= Severe
	lateYear := season == Summer || season == Autumn

	switch {
	case state.Type == HeavyRain || state.Type == Thunderstorm:
		out := []DisasterType{Flood, Tornado}
		if lateYear {
			out = append(out, Hurricane)
		}
		return out
	case state.Type == HeavySnow:
		return []DisasterType{Blizzard, Hailstorm}
	case state.Type == Windy && severe:
		return []DisasterType{Tornado, Hurricane}
	case state.Type == Hot && severe:
		out := []DisasterType{Heatwave, Sandstorm}
		if lateYear {
			out = append(out, Wildfire)
		}
		return out
	case state.Type == Cold && severe:
		return []DisasterType{Blizzard}
	default:
		return nil
	}
}

// SelectDisasterType picks which disaster the current weather produces, or
// NoDisaster. Weather without candidates still has a 1% earthquake chance.
func SelectDisasterType(state WeatherState, season Season, rng *Rand) DisasterType {
	candidates := disasterCandidates(state, season)
	if len(candidates) == 0 {
		if rng.Float64() < earthquakeChance {
			return Earthquake
		}
		return NoDisaster
	}
	return candidates[rng.IntN(len(candidates))]
}

// IsDisasterCompatible reports whether d could plausibly occur under state.
// Geological disasters and NoDisaster are compatible with any weather.
func IsDisasterCompatible(d DisasterType, state WeatherState, season Season) bool {
	switch d {
	case NoDisaster, Earthquake, VolcanicEruption:
		return true
	}
	for _, c := range disasterCandidates(state, season) {
		if c == d {
			return true
		}
	}
	return false
}

// disasterBaseMinutes is the typical lifetime of each disaster.
var disasterBaseMinutes = map[DisasterType]int{
	Earthquake:       10,
	Flood:            720,
	Tornado:          30,
	Hurricane:        1440,
	Blizzard:         480,
	Hailstorm:        45,
	Heatwave:         2880,
	Sandstorm:        240,
	Wildfire:         1440,
	VolcanicEruption: 720,
}

// DisasterDuration returns a randomized lifetime in minutes for d, the base
// lifetime times a uniform variance in [0.5, 1.5].
func DisasterDuration(d DisasterType, rng *Rand) int {
	base, ok := disasterBaseMinutes[d]
	if !ok {
		return 0
	}
	minutes := int(math.Round(float64(base) * rng.Uniform(0.5, 1.5)))
	if minutes < 1 {
		return 1
	}
	return minutes
}

var disasterDescriptions = map[DisasterType]string{
	NoDisaster:       "There is no disaster in progress.",
	Earthquake:       "The ground heaves and cracks as a violent earthquake shakes the land.",
	Flood:            "Floodwaters rise, swallowing roads and low-lying ground.",
	Tornado:          "A roaring tornado tears across the land, hurling debris in its path.",
	Hurricane:        "A hurricane batters the region with torrential rain and shrieking winds.",
	Blizzard:         "A blinding blizzard buries everything under driving snow.",
	Hailstorm:        "Hailstones the size of fists pound down from the sky.",
	Heatwave:         "A punishing heatwave bakes the land and saps the strength of all who venture out.",
	Sandstorm:        "A choking wall of sand sweeps in, scouring everything it touches.",
	Wildfire:         "A wildfire rages out of control, consuming everything in its path.",
	VolcanicEruption: "A volcano erupts, raining ash and fire across the region.",
}

// DescribeDisaster returns a one-sentence description of d.
func DescribeDisaster(d DisasterType) string {
	if s, ok := disasterDescriptions[d]; ok {
		return s
	}
	return disasterDescriptions[NoDisaster]
}
