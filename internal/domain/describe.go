package domain

import "fmt"

// weatherPhrases describe each type at low (Calm/Light), moderate, and high
// (Severe/Extreme) intensity.
var weatherPhrases = map[WeatherType][3]string{
	Clear:        {"The sky is clear and the air is still.", "The sky is clear.", "The sky is a hard, cloudless blue."},
	PartlyCloudy: {"A few wisps of cloud drift overhead.", "Scattered clouds drift across the sky.", "Broken clouds race across the sky."},
	Cloudy:       {"A thin layer of cloud covers the sky.", "The sky is overcast.", "Dark, heavy clouds blanket the sky."},
	LightRain:    {"A faint drizzle hangs in the air.", "A light rain is falling.", "A steady rain soaks the ground."},
	HeavyRain:    {"Heavy rain falls in waves.", "Rain pours down in sheets.", "A torrential downpour floods the ground."},
	Thunderstorm: {"Distant thunder rumbles through the rain.", "A thunderstorm rages overhead.", "A violent thunderstorm splits the sky with lightning."},
	LightSnow:    {"A few snowflakes drift lazily down.", "Light snow is falling.", "Snow falls steadily, dusting everything white."},
	HeavySnow:    {"Thick snow falls quietly.", "Heavy snow is falling.", "Snow falls so thickly the world vanishes in white."},
	Sleet:        {"A few icy pellets patter down.", "Sleet is falling.", "Driving sleet stings exposed skin."},
	Fog:          {"A light mist hangs in the air.", "A thick fog surrounds everything.", "An impenetrable fog swallows the world."},
	Windy:        {"A breeze stirs the air.", "A strong wind is blowing.", "A howling gale tears at everything."},
	Hot:          {"The air is warm.", "The heat is oppressive.", "A blistering heat shimmers over the land."},
	Cold:         {"The air is cool and crisp.", "A bitter cold grips the land.", "A deadly, freezing cold bites to the bone."},
	MagicalStorm: {"Faint arcane lights flicker in the sky.", "A storm of raw magic crackles overhead.", "A cataclysmic magical tempest warps the sky."},
}

// DescribeWeather renders the condition of s as prose.
func DescribeWeather(s WeatherState) string {
	phrases, ok := weatherPhrases[s.Type]
	if !ok {
		return fmt.Sprintf("The weather is %s.", s.Type.Display())
	}
	switch {
	case s.Intensity <= Light:
		return phrases[0]
	case s.Intensity == Moderate:
		return phrases[1]
	default:
		return phrases[2]
	}
}
