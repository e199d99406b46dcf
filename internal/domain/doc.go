// Package domain models the weather of a persistent virtual world.
//
// # Conditions
//
// A location's condition is a (WeatherType, WeatherIntensity) pair plus the
// season it was generated in and its timing. Timing is counted in simulation
// minutes:
//
//	duration_minutes            elapsed since the last transition, reset to 0 on change
//	predicted_duration_minutes  how long the current condition lasts, always > 0
//
// The reserved location "global" names the world-wide default. Zones carry a
// WeatherConfig; a zone's own state is only visible when override_global is set.
//
// # Transitions
//
// The next type is a weighted draw over authored edges (see transitions.go):
//
//	weight = edge probability x seasonal modifier x zone probability x change frequency
//
// A zero total keeps the current type. Durations start from a per-type base,
// stretch by season (Winter x2 for Cold/Heavy_Snow, Summer x1.5 for Hot/Thunderstorm)
// and vary uniformly in [0.5, 1.5].
//
// # Effects
//
// WeatherEffects are a pure function of type and intensity. Intensity scales each
// modifier's deviation from neutral by Calm .5, Light .7, Moderate 1.0, Severe 1.3,
// Extreme 1.6. Clear and Partly_Cloudy are unscaled.
//
// # Disasters
//
// Disaster rules here are pure: probability by intensity (doubled for extreme
// weather), weather-conditioned candidates, compatibility, and durations. The
// lifecycle lives in the weather package.
//
// # Names and records
//
// Every enum maps to a canonical name through an explicit table; wire records
// use those names and the field names documented on each record type. Records are
// validated against the JSON Schemas embedded from schemas/.
package domain
