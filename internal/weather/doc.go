// Package weather runs the zone-aware weather state machine and the disaster
// lifecycle layered on it.
//
// An Engine owns the global state, per-zone states and configs, the season and
// the active disasters. Transitions fire when UpdateWeather or
// AdvanceGlobalWeather pushes a location's elapsed duration past its predicted
// duration, or immediately through the administrative calls. Every transition
// is reported to the registered ChangeHandler.
//
// Engine does no locking. Run it behind a single owner.
package weather
