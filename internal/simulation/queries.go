package simulation

import (
	"context"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
)

// SeasonInfo is the current season and the days elapsed in it.
type SeasonInfo struct {
	Season domain.Season `json:"season"`
	Day    int           `json:"day"`
}

// GlobalWeather returns the global state.
func (r *Runtime) GlobalWeather(ctx context.Context) (domain.WeatherState, error) {
	return call(ctx, r, (*weather.Engine).GlobalWeather)
}

// SetGlobalWeather sets the global condition and returns the new state.
func (r *Runtime) SetGlobalWeather(ctx context.Context, t domain.WeatherType, i domain.WeatherIntensity) (domain.WeatherState, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState { return e.SetGlobalWeather(t, i) })
}

// ZoneWeather returns the effective state of zone, falling back to global
// when the zone does not override it.
func (r *Runtime) ZoneWeather(ctx context.Context, zone string) (domain.WeatherState, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState { return e.GetZoneWeather(zone) })
}

// SetZoneWeather writes a zone-local condition and returns the zone's
// effective state.
func (r *Runtime) SetZoneWeather(ctx context.Context, zone string, t domain.WeatherType, i domain.WeatherIntensity) (domain.WeatherState, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState { return e.SetZoneWeather(zone, t, i) })
}

// ZoneConfig returns the config of zone, or the default if it has none.
func (r *Runtime) ZoneConfig(ctx context.Context, zone string) (domain.WeatherConfig, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherConfig { return e.GetZoneConfig(zone) })
}

// SetZoneConfig stores cfg and returns the zone's resulting state.
func (r *Runtime) SetZoneConfig(ctx context.Context, zone string, cfg domain.WeatherConfig) (domain.WeatherState, error) {
	cfg = cfg.Clone()
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState {
		e.SetZoneConfig(zone, cfg)
		return e.GetZoneWeather(zone)
	})
}

// ClearZone drops a zone's state and config. It reports whether either existed.
func (r *Runtime) ClearZone(ctx context.Context, zone string) (bool, error) {
	return call(ctx, r, func(e *weather.Engine) bool { return e.ClearZone(zone) })
}

// Zones lists every zone with stored state or config.
func (r *Runtime) Zones(ctx context.Context) ([]string, error) {
	return call(ctx, r, (*weather.Engine).Zones)
}

// Effects returns the gameplay effects of the weather in zone.
func (r *Runtime) Effects(ctx context.Context, zone string) (domain.WeatherEffects, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherEffects { return e.GetWeatherEffects(zone) })
}

// RoomEffects returns the effects for a room, which shares its zone's weather.
func (r *Runtime) RoomEffects(ctx context.Context, room string) (domain.WeatherEffects, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherEffects { return e.GetRoomWeatherEffects(room) })
}

// ChangeProbability is the seasonal weight of the from -> to transition.
func (r *Runtime) ChangeProbability(ctx context.Context, from, to domain.WeatherType, season domain.Season) (float64, error) {
	return call(ctx, r, func(e *weather.Engine) float64 { return e.GetWeatherChangeProbability(from, to, season) })
}

// Forecast predicts the next hours of weather for zone in 4-hour steps.
func (r *Runtime) Forecast(ctx context.Context, zone string, hours int) ([]domain.ForecastEntry, error) {
	return call(ctx, r, func(e *weather.Engine) []domain.ForecastEntry { return e.GetForecast(zone, hours) })
}

// Report builds the current conditions, effects and forecast for zone.
func (r *Runtime) Report(ctx context.Context, zone string) (weather.Report, error) {
	return call(ctx, r, func(e *weather.Engine) weather.Report { return e.GetWeatherReport(zone) })
}

// Season returns the current season and its elapsed days.
func (r *Runtime) Season(ctx context.Context) (SeasonInfo, error) {
	return call(ctx, r, func(e *weather.Engine) SeasonInfo {
		return SeasonInfo{Season: e.Season(), Day: e.SeasonDay()}
	})
}

// SetSeason switches the season immediately.
func (r *Runtime) SetSeason(ctx context.Context, s domain.Season) error {
	return r.Do(ctx, func(e *weather.Engine) { e.SetSeason(s) })
}

// AdvanceSeason counts days toward the next season. It reports whether the
// season turned.
func (r *Runtime) AdvanceSeason(ctx context.Context, days int) (bool, error) {
	return call(ctx, r, func(e *weather.Engine) bool { return e.AdvanceSeason(days) })
}

// ForceWeatherChange rolls a new condition for zone right away.
func (r *Runtime) ForceWeatherChange(ctx context.Context, zone string) (domain.WeatherState, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState { return e.ForceWeatherChange(zone) })
}

// ResetWeather puts zone back to calm clear weather.
func (r *Runtime) ResetWeather(ctx context.Context, zone string) (domain.WeatherState, error) {
	return call(ctx, r, func(e *weather.Engine) domain.WeatherState { return e.ResetWeatherToDefault(zone) })
}

// TriggerDisaster starts t at location. minutes <= 0 draws a duration. The
// error is either a runtime error or the engine's rejection in strict mode.
func (r *Runtime) TriggerDisaster(ctx context.Context, location string, t domain.DisasterType, minutes int) (domain.WeatherState, error) {
	var (
		st       domain.WeatherState
		rejected error
	)
	if err := r.Do(ctx, func(e *weather.Engine) { st, rejected = e.TriggerDisaster(location, t, minutes) }); err != nil {
		return domain.WeatherState{}, err
	}
	return st, rejected
}

// EndDisaster stops the disaster at location. It reports whether one was
// active there.
func (r *Runtime) EndDisaster(ctx context.Context, location string) (bool, error) {
	return call(ctx, r, func(e *weather.Engine) bool { return e.EndDisaster(location) })
}

// ActiveDisaster returns the disaster started at location itself. A global
// disaster a zone inherits is not included.
func (r *Runtime) ActiveDisaster(ctx context.Context, location string) (domain.ActiveDisaster, bool, error) {
	var (
		a  domain.ActiveDisaster
		ok bool
	)
	err := r.Do(ctx, func(e *weather.Engine) { a, ok = e.Disasters().Active(location) })
	return a, ok, err
}

// ActiveDisasters returns every active disaster keyed by location.
func (r *Runtime) ActiveDisasters(ctx context.Context) (map[string]domain.ActiveDisaster, error) {
	return call(ctx, r, (*weather.Engine).ActiveDisasters)
}

// DisasterProbability is the chance a disaster starts at location under its
// current weather.
func (r *Runtime) DisasterProbability(ctx context.Context, location string) (float64, error) {
	return call(ctx, r, func(e *weather.Engine) float64 { return e.CalculateDisasterProbability(location) })
}

// Snapshot exports the engine state.
func (r *Runtime) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return call(ctx, r, (*weather.Engine).Snapshot)
}

// Restore replaces the engine's state. Only a season turn is emitted.
func (r *Runtime) Restore(ctx context.Context, snap domain.Snapshot) error {
	return r.Do(ctx, func(e *weather.Engine) { e.Restore(snap) })
}
