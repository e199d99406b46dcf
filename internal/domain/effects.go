package domain

import "strings"

// WeatherEffects are the gameplay modifiers derived from a weather condition.
// Multipliers are centered on 1.0 and clamped to [0.1, 2.0].
type WeatherEffects struct {
	VisibilityModifier float64 `json:"visibility_modifier"`
	MovementModifier   float64 `json:"movement_modifier"`
	CombatModifier     float64 `json:"combat_modifier"`
	StaminaDrain       float64 `json:"stamina_drain"`
	BlocksFlying       bool    `json:"blocks_flying"`
	BlocksRanged       bool    `json:"blocks_ranged"`
	ProvidesWater      bool    `json:"provides_water"`
	FireResistance     bool    `json:"fire_resistance"`
	LightningChance    bool    `json:"lightning_chance"`
}

// NoSignificantEffects is what DescribeEffects returns for neutral weather.
const NoSignificantEffects = "The weather has no significant effects."

const (
	minModifier = 0.1
	maxModifier = 2.0
)

// effectProfile is the authored baseline of a type at Moderate intensity.
// Flags gated on intensity apply from the given level upward.
type effectProfile struct {
	visibility, movement, combat, stamina float64

	blocksFlying, blocksRanged, providesWater, fireResistance, lightning bool

	flyingFrom WeatherIntensity
	rangedFrom WeatherIntensity
}

var effectProfiles = map[WeatherType]effectProfile{
	Clear:        {visibility: 1.1, movement: 1.0, combat: 1.0, stamina: 1.0},
	PartlyCloudy: {visibility: 1.0, movement: 1.0, combat: 1.0, stamina: 1.0},
	Cloudy:       {visibility: 0.85, movement: 1.0, combat: 1.0, stamina: 1.0},
	LightRain: {visibility: 0.8, movement: 0.95, combat: 0.95, stamina: 1.05,
		providesWater: true, fireResistance: true},
	HeavyRain: {visibility: 0.55, movement: 0.75, combat: 0.85, stamina: 1.2,
		blocksRanged: true, rangedFrom: Moderate, providesWater: true, fireResistance: true},
	Thunderstorm: {visibility: 0.45, movement: 0.7, combat: 0.8, stamina: 1.25,
		blocksFlying: true, blocksRanged: true, providesWater: true, fireResistance: true, lightning: true},
	LightSnow: {visibility: 0.75, movement: 0.85, combat: 0.95, stamina: 1.15,
		providesWater: true, fireResistance: true},
	HeavySnow: {visibility: 0.4, movement: 0.55, combat: 0.8, stamina: 1.4,
		blocksFlying: true, blocksRanged: true, providesWater: true, fireResistance: true},
	Sleet: {visibility: 0.65, movement: 0.75, combat: 0.9, stamina: 1.2,
		providesWater: true, fireResistance: true},
	Fog: {visibility: 0.3, movement: 0.9, combat: 0.85, stamina: 1.0,
		blocksRanged: true, rangedFrom: Moderate},
	Windy: {visibility: 0.9, movement: 0.85, combat: 0.9, stamina: 1.15,
		blocksFlying: true, flyingFrom: Severe, blocksRanged: true, rangedFrom: Moderate},
	Hot:  {visibility: 1.0, movement: 0.9, combat: 0.95, stamina: 1.5},
	Cold: {visibility: 1.0, movement: 0.85, combat: 0.95, stamina: 1.3},
	MagicalStorm: {visibility: 0.5, movement: 0.8, combat: 1.2, stamina: 1.3,
		blocksFlying: true, lightning: true},
}

// intensityScale stretches a profile's deviation from neutral.
var intensityScale = [...]float64{
	Calm:     0.5,
	Light:    0.7,
	Moderate: 1.0,
	Severe:   1.3,
	Extreme:  1.6,
}

// IntensityScale returns the multiplier applied to a profile's deviation from
// neutral at intensity i.
func IntensityScale(i WeatherIntensity) float64 {
	if !i.Valid() {
		return 1.0
	}
	return intensityScale[i]
}

// DeriveEffects computes the gameplay modifiers of (w, i). Clear and
// Partly_Cloudy keep their authored visibility regardless of intensity; every
// other type has its deviations from neutral scaled by IntensityScale.
func DeriveEffects(w WeatherType, i WeatherIntensity) WeatherEffects {
	p, ok := effectProfiles[w]
	if !ok {
		p = effectProfiles[Clear]
	}

	effects := WeatherEffects{
		VisibilityModifier: p.visibility,
		MovementModifier:   p.movement,
		CombatModifier:     p.combat,
		StaminaDrain:       p.stamina,
		BlocksFlying:       p.blocksFlying && i >= p.flyingFrom,
		BlocksRanged:       p.blocksRanged && i >= p.rangedFrom,
		ProvidesWater:      p.providesWater,
		FireResistance:     p.fireResistance,
		LightningChance:    p.lightning,
	}
	if w == Clear || w == PartlyCloudy {
		return effects
	}

	scale := IntensityScale(i)
	effects.VisibilityModifier = scaleModifier(p.visibility, scale)
	effects.MovementModifier = scaleModifier(p.movement, scale)
	effects.CombatModifier = scaleModifier(p.combat, scale)
	effects.StaminaDrain = scaleModifier(p.stamina, scale)
	return effects
}

// EffectsOf derives the effects of a state's current condition.
func EffectsOf(s WeatherState) WeatherEffects {
	return DeriveEffects(s.Type, s.Intensity)
}

func scaleModifier(base, scale float64) float64 {
	v := 1 + (base-1)*scale
	switch {
	case v < minModifier:
		return minModifier
	case v > maxModifier:
		return maxModifier
	default:
		return v
	}
}

// Neutral reports whether the effects sit in the band players would not notice:
// visibility >= 0.9, movement in (0.9, 1.1], stamina drain <= 1.1 and no flags.
func (e WeatherEffects) Neutral() bool {
	return e.VisibilityModifier >= 0.9 &&
		e.MovementModifier > 0.9 && e.MovementModifier <= 1.1 &&
		e.StaminaDrain <= 1.1 &&
		!e.BlocksFlying && !e.BlocksRanged && !e.ProvidesWater &&
		!e.FireResistance && !e.LightningChance
}

// DescribeEffects renders effects as a sentence, e.g.
// "Visibility is reduced, movement is slowed and flying is impossible."
func DescribeEffects(e WeatherEffects) string {
	if e.Neutral() {
		return NoSignificantEffects
	}

	var parts []string
	switch {
	case e.VisibilityModifier < 0.5:
		parts = append(parts, "visibility is severely limited")
	case e.VisibilityModifier < 0.9:
		parts = append(parts, "visibility is reduced")
	case e.VisibilityModifier > 1.05:
		parts = append(parts, "visibility is excellent")
	}
	switch {
	case e.MovementModifier <= 0.6:
		parts = append(parts, "movement is greatly hindered")
	case e.MovementModifier <= 0.9:
		parts = append(parts, "movement is slowed")
	case e.MovementModifier > 1.1:
		parts = append(parts, "movement is eased")
	}
	switch {
	case e.CombatModifier < 0.9:
		parts = append(parts, "combat is hampered")
	case e.CombatModifier > 1.1:
		parts = append(parts, "combat is heightened")
	}
	switch {
	case e.StaminaDrain > 1.5:
		parts = append(parts, "stamina drains rapidly")
	case e.StaminaDrain > 1.1:
		parts = append(parts, "stamina drains faster")
	}
	if e.BlocksFlying {
		parts = append(parts, "flying is impossible")
	}
	if e.BlocksRanged {
		parts = append(parts, "ranged attacks are impeded")
	}
	if e.ProvidesWater {
		parts = append(parts, "fresh water can be collected")
	}
	if e.FireResistance {
		parts = append(parts, "fires are suppressed")
	}
	if e.LightningChance {
		parts = append(parts, "lightning may strike")
	}
	if len(parts) == 0 {
		return NoSignificantEffects
	}

	sentence := joinWithAnd(parts)
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

// joinWithAnd joins items with commas and "and" before the last one.
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
