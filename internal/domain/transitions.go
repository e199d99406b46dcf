package domain

// transitionTable holds the authored, plausible type-to-type changes. Weights
// are relative within a from-type; self edges let weather persist.
var transitionTable = map[WeatherType][]WeatherTransition{
	Clear: {
		{Clear, Clear, 0.40, 180, "The sky remains clear."},
		{Clear, PartlyCloudy, 0.30, 180, "A few clouds drift across the sky."},
		{Clear, Windy, 0.10, 150, "A steady wind picks up."},
		{Clear, Hot, 0.10, 300, "The air grows hot and still."},
		{Clear, Cold, 0.05, 300, "A sharp chill settles in."},
		{Clear, Fog, 0.05, 240, "A low fog creeps in."},
	},
	PartlyCloudy: {
		{PartlyCloudy, Clear, 0.30, 180, "The clouds part and the sky clears."},
		{PartlyCloudy, PartlyCloudy, 0.25, 180, "Clouds continue to drift by."},
		{PartlyCloudy, Cloudy, 0.30, 120, "The clouds thicken overhead."},
		{PartlyCloudy, Windy, 0.10, 150, "The wind begins to gust."},
		{PartlyCloudy, Fog, 0.05, 240, "Mist gathers close to the ground."},
	},
	Cloudy: {
		{Cloudy, PartlyCloudy, 0.25, 180, "Patches of sky break through the clouds."},
		{Cloudy, Cloudy, 0.20, 120, "The overcast lingers."},
		{Cloudy, LightRain, 0.25, 90, "A light rain begins to fall."},
		{Cloudy, LightSnow, 0.10, 90, "Light snowflakes drift down."},
		{Cloudy, Sleet, 0.05, 90, "Icy sleet starts to patter down."},
		{Cloudy, Fog, 0.10, 240, "The clouds sink into a thick fog."},
		{Cloudy, Windy, 0.05, 150, "A cold wind pushes the clouds along."},
	},
	LightRain: {
		{LightRain, Cloudy, 0.30, 120, "The rain tapers off under grey skies."},
		{LightRain, LightRain, 0.25, 90, "A gentle rain keeps falling."},
		{LightRain, HeavyRain, 0.25, 60, "The rain grows heavier."},
		{LightRain, Thunderstorm, 0.10, 45, "Thunder rumbles as the rain intensifies."},
		{LightRain, Sleet, 0.05, 90, "The rain turns to sleet."},
		{LightRain, Fog, 0.05, 240, "A damp fog rises with the rain."},
	},
	HeavyRain: {
		{HeavyRain, LightRain, 0.35, 90, "The downpour eases to a light rain."},
		{HeavyRain, HeavyRain, 0.20, 60, "Rain continues to pour down."},
		{HeavyRain, Thunderstorm, 0.30, 45, "Lightning splits the sky as a storm breaks."},
		{HeavyRain, Cloudy, 0.15, 120, "The rain stops suddenly, leaving heavy clouds."},
	},
	Thunderstorm: {
		{Thunderstorm, HeavyRain, 0.40, 60, "The thunder fades, but the rain pours on."},
		{Thunderstorm, LightRain, 0.25, 90, "The storm passes, leaving a light rain."},
		{Thunderstorm, Thunderstorm, 0.15, 45, "The storm rages on."},
		{Thunderstorm, Windy, 0.10, 150, "The storm blows itself out into a gale."},
		{Thunderstorm, MagicalStorm, 0.02, 30, "The lightning takes on an unnatural hue."},
		{Thunderstorm, Cloudy, 0.08, 120, "The storm breaks up into scattered clouds."},
	},
	LightSnow: {
		{LightSnow, Cloudy, 0.30, 120, "The snow stops falling."},
		{LightSnow, LightSnow, 0.25, 90, "Snowflakes continue to drift down."},
		{LightSnow, HeavySnow, 0.25, 60, "The snowfall grows heavy."},
		{LightSnow, Sleet, 0.10, 90, "The snow turns wet and icy."},
		{LightSnow, Cold, 0.10, 300, "The snow stops and a bitter cold remains."},
	},
	HeavySnow: {
		{HeavySnow, LightSnow, 0.40, 90, "The heavy snow lightens."},
		{HeavySnow, HeavySnow, 0.25, 60, "Thick snow keeps falling."},
		{HeavySnow, Cold, 0.25, 300, "The snow ends, leaving freezing air."},
		{HeavySnow, Windy, 0.10, 150, "Wind whips the fallen snow into drifts."},
	},
	Sleet: {
		{Sleet, LightRain, 0.30, 90, "The sleet softens into rain."},
		{Sleet, LightSnow, 0.30, 90, "The sleet turns to snow."},
		{Sleet, Sleet, 0.15, 90, "Icy sleet keeps falling."},
		{Sleet, Cloudy, 0.20, 120, "The sleet stops under leaden skies."},
		{Sleet, Cold, 0.05, 300, "The sleet freezes as the air turns bitter."},
	},
	Fog: {
		{Fog, Clear, 0.30, 180, "The fog burns off, revealing a clear sky."},
		{Fog, PartlyCloudy, 0.25, 180, "The fog lifts into scattered clouds."},
		{Fog, Fog, 0.25, 240, "The fog hangs thick in the air."},
		{Fog, Cloudy, 0.15, 120, "The fog rises into low clouds."},
		{Fog, LightRain, 0.05, 90, "The fog condenses into a light drizzle."},
	},
	Windy: {
		{Windy, Clear, 0.30, 180, "The wind dies down under a clear sky."},
		{Windy, PartlyCloudy, 0.25, 180, "The wind eases and clouds drift in."},
		{Windy, Windy, 0.20, 150, "The wind keeps howling."},
		{Windy, Cloudy, 0.15, 120, "The wind drives in a bank of clouds."},
		{Windy, Thunderstorm, 0.10, 45, "The wind heralds an approaching storm."},
	},
	Hot: {
		{Hot, Clear, 0.35, 180, "The heat breaks to a pleasant, clear day."},
		{Hot, Hot, 0.30, 300, "The heat shows no sign of relenting."},
		{Hot, PartlyCloudy, 0.15, 180, "Clouds offer some relief from the heat."},
		{Hot, Thunderstorm, 0.15, 45, "The oppressive heat breaks in a thunderstorm."},
		{Hot, Windy, 0.05, 150, "A hot wind sweeps across the land."},
	},
	Cold: {
		{Cold, Clear, 0.30, 180, "The cold eases under a clear sky."},
		{Cold, Cold, 0.30, 300, "The bitter cold persists."},
		{Cold, LightSnow, 0.20, 90, "Snow begins to fall in the frigid air."},
		{Cold, Cloudy, 0.15, 120, "Grey clouds roll in over the cold land."},
		{Cold, HeavySnow, 0.05, 60, "A heavy snowfall sets in."},
	},
	MagicalStorm: {
		{MagicalStorm, Thunderstorm, 0.35, 45, "The eldritch light fades, leaving an ordinary storm."},
		{MagicalStorm, Clear, 0.30, 180, "The arcane storm vanishes as suddenly as it came."},
		{MagicalStorm, Fog, 0.20, 240, "The storm dissolves into a shimmering mist."},
		{MagicalStorm, MagicalStorm, 0.15, 30, "Raw magic continues to crackle overhead."},
	},
}

// seasonalModifiers is sparse: absent (type, season) pairs weigh 1.0.
var seasonalModifiers = map[Season]map[WeatherType]float64{
	Spring: {
		LightRain:    1.5,
		PartlyCloudy: 1.2,
		Thunderstorm: 1.2,
		LightSnow:    0.5,
		HeavySnow:    0.3,
		Hot:          0.5,
		Cold:         0.6,
	},
	Summer: {
		Hot:          2.0,
		Thunderstorm: 1.5,
		Clear:        1.3,
		Cold:         0.1,
		Sleet:        0.05,
		LightSnow:    0.05,
		HeavySnow:    0.01,
	},
	Autumn: {
		HeavyRain: 1.4,
		Fog:       1.5,
		Windy:     1.5,
		Cloudy:    1.2,
		Hot:       0.5,
	},
	Winter: {
		Cold:         2.0,
		LightSnow:    2.0,
		HeavySnow:    1.8,
		Sleet:        1.5,
		Thunderstorm: 0.3,
		Hot:          0.05,
	},
}

// baseDurations are the typical lifetimes in minutes before variance.
var baseDurations = map[WeatherType]int{
	Clear:        180,
	PartlyCloudy: 180,
	Cloudy:       120,
	LightRain:    90,
	LightSnow:    90,
	Sleet:        90,
	HeavyRain:    60,
	HeavySnow:    60,
	Thunderstorm: 45,
	Fog:          240,
	Windy:        150,
	Hot:          300,
	Cold:         300,
	MagicalStorm: 30,
}

// Transitions returns the authored edges leaving w. The slice is shared and
// must not be modified.
func Transitions(w WeatherType) []WeatherTransition {
	return transitionTable[w]
}

// SeasonalModifier returns how strongly season s favors weather w.
func SeasonalModifier(w WeatherType, s Season) float64 {
	if m, ok := seasonalModifiers[s][w]; ok {
		return m
	}
	return 1.0
}

// TransitionProbability is the authored weight of from -> to scaled by the
// season. Unauthored pairs report 0.1.
func TransitionProbability(from, to WeatherType, s Season) float64 {
	for _, t := range transitionTable[from] {
		if t.To == to {
			return t.Probability * SeasonalModifier(to, s)
		}
	}
	return 0.1
}

func baseDurationMinutes(w WeatherType) int {
	if d, ok := baseDurations[w]; ok {
		return d
	}
	return 120
}

// seasonalDurationFactor stretches lifetimes of weather that belongs to a
// season: winter cold and heavy snow, summer heat and thunderstorms.
func seasonalDurationFactor(w WeatherType, s Season) float64 {
	switch {
	case s == Winter && (w == Cold || w == HeavySnow):
		return 2.0
	case s == Summer && (w == Hot || w == Thunderstorm):
		return 1.5
	default:
		return 1.0
	}
}
