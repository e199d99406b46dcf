package weather

import (
	"log/slog"
	"sort"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/jonboulle/clockwork"
)

// DaysPerSeason is how many simulation days pass before the season turns.
const DaysPerSeason = 90

// MaxAdvanceDays bounds a single season advance request.
const MaxAdvanceDays = 100 * DaysPerSeason * seasonsPerYear

const seasonsPerYear = 4

const defaultForecastCacheSize = 256

// ChangeHandler observes every transition with the location and the state
// before and after it. It runs synchronously on the engine's owner.
type ChangeHandler func(location string, before, after domain.WeatherState)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source for transition timestamps and forecasts.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStrictDisasters makes TriggerDisaster reject disasters the weather at
// the location could not produce.
func WithStrictDisasters(strict bool) Option {
	return func(e *Engine) { e.strictDisasters = strict }
}

// WithSeason sets the starting season.
func WithSeason(s domain.Season) Option {
	return func(e *Engine) { e.season = s }
}

// WithForecastCacheSize bounds how many generated forecasts are retained.
func WithForecastCacheSize(n int) Option {
	return func(e *Engine) { e.forecastCacheSize = n }
}

// Engine holds the global weather, per-zone weather and configs, the season,
// and the disasters layered on top.
//
// Engine is not safe for concurrent use. It expects a single owner that
// serializes every call; see the simulation package.
type Engine struct {
	clock  clockwork.Clock
	rng    *domain.Rand
	logger *slog.Logger

	season    domain.Season
	seasonDay int

	global  domain.WeatherState
	zones   map[string]domain.WeatherState
	configs map[string]domain.WeatherConfig

	disasters       *DisasterEngine
	strictDisasters bool

	forecasts         *forecastCache
	forecastCacheSize int

	onChange ChangeHandler
}

// New builds an engine whose global weather starts Clear and Calm. rng is the
// single random source for every draw the engine makes.
func New(rng *domain.Rand, opts ...Option) *Engine {
	e := &Engine{
		clock:             clockwork.NewRealClock(),
		rng:               rng,
		logger:            slog.Default(),
		forecastCacheSize: defaultForecastCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.disasters = NewDisasterEngine(rng, e.strictDisasters)
	e.forecasts = newForecastCache(e.forecastCacheSize)
	e.init()
	return e
}

func (e *Engine) init() {
	e.global = domain.DefaultWeatherState(e.season, e.clock.Now())
	e.zones = make(map[string]domain.WeatherState)
	e.configs = make(map[string]domain.WeatherConfig)
	e.disasters.reset()
	e.forecasts.purge()
}

// Shutdown drops every zone, config and disaster, unregisters the change
// handler and returns the global weather to its initial state.
func (e *Engine) Shutdown() {
	e.onChange = nil
	e.seasonDay = 0
	e.init()
	e.logger.Info("weather engine shut down")
}

// OnChange registers the transition handler. A later registration replaces an
// earlier one; nil unregisters.
func (e *Engine) OnChange(h ChangeHandler) {
	e.onChange = h
}

// Clock returns the engine's time source.
func (e *Engine) Clock() clockwork.Clock { return e.clock }

// Disasters exposes the disaster lifecycle. Mutations made through it bypass
// change notification; prefer the Engine methods.
func (e *Engine) Disasters() *DisasterEngine { return e.disasters }

// GlobalWeather returns the shared global state.
func (e *Engine) GlobalWeather() domain.WeatherState {
	return e.overlay(domain.GlobalLocation, e.global, false)
}

// SetGlobalWeather moves the global weather to (t, i) unconditionally.
func (e *Engine) SetGlobalWeather(t domain.WeatherType, i domain.WeatherIntensity) domain.WeatherState {
	return e.transitionGlobal(t, i)
}

// AdvanceGlobalWeather adds elapsed minutes to the global duration and
// transitions once the predicted duration is reached.
func (e *Engine) AdvanceGlobalWeather(elapsed int) {
	if elapsed <= 0 {
		return
	}
	e.global.DurationMinutes += elapsed
	if !e.global.Due() {
		return
	}
	next := domain.GenerateNextWeather(e.global, domain.DefaultWeatherConfig(), e.rng)
	e.transitionGlobal(next, domain.RandomIntensity(e.rng, domain.Extreme))
}

// GetZoneWeather returns the weather observed in zone. A zone's own state is
// only visible while its config overrides global; otherwise the global state is
// returned even if the zone holds a stale state of its own.
func (e *Engine) GetZoneWeather(zone string) domain.WeatherState {
	if zone == domain.GlobalLocation {
		return e.GlobalWeather()
	}
	if st, ok := e.zones[zone]; ok && e.configs[zone].OverrideGlobal {
		return e.overlay(zone, st, false)
	}
	return e.overlay(zone, e.global, true)
}

// SetZoneWeather writes a zone-local state regardless of the override flag.
func (e *Engine) SetZoneWeather(zone string, t domain.WeatherType, i domain.WeatherIntensity) domain.WeatherState {
	if zone == domain.GlobalLocation {
		return e.SetGlobalWeather(t, i)
	}
	return e.transitionZone(zone, t, i)
}

// GetZoneConfig returns the zone's config, or the default for unconfigured zones.
func (e *Engine) GetZoneConfig(zone string) domain.WeatherConfig {
	if cfg, ok := e.configs[zone]; ok {
		return cfg.Clone()
	}
	return domain.DefaultWeatherConfig()
}

// SetZoneConfig stores the zone's policy. Enabling the override on a zone
// without a state of its own seeds it from the current global weather.
func (e *Engine) SetZoneConfig(zone string, cfg domain.WeatherConfig) {
	if zone == domain.GlobalLocation {
		return
	}
	e.configs[zone] = cfg.Clone()
	if _, ok := e.zones[zone]; cfg.OverrideGlobal && !ok {
		st := e.global
		st.Disaster = domain.NoDisaster
		st.DisasterRemainingMinutes = 0
		e.zones[zone] = st
	}
	e.forecasts.purge()
}

// ClearZone forgets a zone's state and config so it mirrors global again.
// It reports whether anything was removed.
func (e *Engine) ClearZone(zone string) bool {
	_, hadState := e.zones[zone]
	_, hadConfig := e.configs[zone]
	delete(e.zones, zone)
	delete(e.configs, zone)
	if hadState || hadConfig {
		e.forecasts.purge()
	}
	return hadState || hadConfig
}

// Zones lists every zone holding a state or config, sorted.
func (e *Engine) Zones() []string {
	seen := make(map[string]struct{}, len(e.zones)+len(e.configs))
	for z := range e.zones {
		seen[z] = struct{}{}
	}
	for z := range e.configs {
		seen[z] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}

// GetWeatherEffects derives the gameplay effects in zone.
func (e *Engine) GetWeatherEffects(zone string) domain.WeatherEffects {
	return domain.EffectsOf(e.GetZoneWeather(zone))
}

// GetRoomWeatherEffects returns the effects for a room. Rooms have no weather
// of their own: the room id is looked up as a zone id.
func (e *Engine) GetRoomWeatherEffects(room string) domain.WeatherEffects {
	return e.GetWeatherEffects(room)
}

// GetWeatherChangeProbability is the seasonal weight of the from -> to edge.
func (e *Engine) GetWeatherChangeProbability(from, to domain.WeatherType, season domain.Season) float64 {
	return domain.TransitionProbability(from, to, season)
}

// Season returns the current season.
func (e *Engine) Season() domain.Season { return e.season }

// SeasonDay returns the days elapsed in the current season.
func (e *Engine) SeasonDay() int { return e.seasonDay }

// SetSeason switches the season immediately and restarts its day counter.
func (e *Engine) SetSeason(s domain.Season) {
	e.seasonDay = 0
	e.applySeason(s)
}

// AdvanceSeason counts days toward the next season and turns it every
// DaysPerSeason days. It reports whether the season turned at least once.
func (e *Engine) AdvanceSeason(days int) bool {
	if days <= 0 {
		return false
	}
	// Whole years leave the season where it is; fold them away so the day
	// counter cannot overflow.
	turned := days >= DaysPerSeason*seasonsPerYear
	days %= DaysPerSeason * seasonsPerYear

	total := e.seasonDay + days
	turns := total / DaysPerSeason
	e.seasonDay = total % DaysPerSeason
	if turns > 0 {
		turned = true
	}
	if !turned {
		return false
	}
	next := domain.Season((int(e.season) + turns) % seasonsPerYear)
	e.applySeason(next)
	return true
}

// applySeason propagates s to every stored state. Pending predicted durations
// are left alone.
func (e *Engine) applySeason(s domain.Season) {
	before := e.season
	e.season = s
	e.global.Season = s
	for z, st := range e.zones {
		st.Season = s
		e.zones[z] = st
	}
	e.forecasts.purge()
	if before != s {
		e.logger.Info("season changed", "from", before.String(), "to", s.String())
	}
}

// UpdateWeather advances the global weather, then every overriding zone by
// elapsed minutes. Zones that mirror global are not advanced.
func (e *Engine) UpdateWeather(elapsed int) {
	if elapsed <= 0 {
		return
	}
	e.AdvanceGlobalWeather(elapsed)

	for _, zone := range e.overridingZones() {
		st := e.zones[zone]
		st.DurationMinutes += elapsed
		e.zones[zone] = st
		if !st.Due() {
			continue
		}
		cfg := e.configs[zone]
		next := domain.GenerateNextWeather(st, cfg, e.rng)
		e.transitionZone(zone, next, domain.RandomIntensity(e.rng, cfg.MaxIntensity))
	}
}

// overridingZones returns the zones whose own state is live, sorted so the
// random source is consumed in a stable order.
func (e *Engine) overridingZones() []string {
	var out []string
	for z, cfg := range e.configs {
		if !cfg.OverrideGlobal {
			continue
		}
		if _, ok := e.zones[z]; ok {
			out = append(out, z)
		}
	}
	sort.Strings(out)
	return out
}

// ForceWeatherChange draws a new condition for zone immediately, ignoring the
// remaining duration. A zone without a state of its own starts from global.
func (e *Engine) ForceWeatherChange(zone string) domain.WeatherState {
	if zone == domain.GlobalLocation {
		next := domain.GenerateNextWeather(e.global, domain.DefaultWeatherConfig(), e.rng)
		return e.transitionGlobal(next, domain.RandomIntensity(e.rng, domain.Extreme))
	}
	base, ok := e.zones[zone]
	if !ok {
		base = e.global
	}
	cfg := e.GetZoneConfig(zone)
	next := domain.GenerateNextWeather(base, cfg, e.rng)
	return e.transitionZone(zone, next, domain.RandomIntensity(e.rng, cfg.MaxIntensity))
}

// ResetWeatherToDefault returns a location to Clear and Calm with fresh timing.
func (e *Engine) ResetWeatherToDefault(zone string) domain.WeatherState {
	if zone == domain.GlobalLocation {
		before := e.GlobalWeather()
		e.global = domain.DefaultWeatherState(e.season, e.clock.Now())
		return e.committed(domain.GlobalLocation, before)
	}
	before := e.zoneStateOrGlobal(zone)
	e.zones[zone] = domain.DefaultWeatherState(e.season, e.clock.Now())
	return e.committed(zone, before)
}

func (e *Engine) transitionGlobal(t domain.WeatherType, i domain.WeatherIntensity) domain.WeatherState {
	before := e.GlobalWeather()
	e.global = e.nextState(e.global, t, i)
	return e.committed(domain.GlobalLocation, before)
}

func (e *Engine) transitionZone(zone string, t domain.WeatherType, i domain.WeatherIntensity) domain.WeatherState {
	before := e.zoneStateOrGlobal(zone)
	base, ok := e.zones[zone]
	if !ok {
		base = e.global
	}
	e.zones[zone] = e.nextState(base, t, i)
	return e.committed(zone, before)
}

// zoneStateOrGlobal is the zone's own state if it has one, else global, with
// the zone's disaster overlaid.
func (e *Engine) zoneStateOrGlobal(zone string) domain.WeatherState {
	if st, ok := e.zones[zone]; ok {
		return e.overlay(zone, st, false)
	}
	return e.overlay(zone, e.global, true)
}

// nextState applies (t, i) to st and restarts its timing.
func (e *Engine) nextState(st domain.WeatherState, t domain.WeatherType, i domain.WeatherIntensity) domain.WeatherState {
	if !i.Valid() {
		i = domain.Extreme
	}
	st.Type = t
	st.Intensity = i
	st.Season = e.season
	st.LastChange = e.clock.Now()
	st.DurationMinutes = 0
	st.PredictedDurationMinutes = domain.GenerateWeatherDuration(t, e.season, e.rng)
	st.Disaster = domain.NoDisaster
	st.DisasterRemainingMinutes = 0
	return st
}

// committed finishes a transition at location: it drops cached forecasts and
// notifies the handler.
func (e *Engine) committed(location string, before domain.WeatherState) domain.WeatherState {
	e.forecasts.purge()
	var after domain.WeatherState
	if location == domain.GlobalLocation {
		after = e.GlobalWeather()
	} else {
		after = e.zoneStateOrGlobal(location)
	}
	e.logger.Debug("weather changed",
		"location", location,
		"from", before.Summary(),
		"to", after.Summary(),
		"predicted_minutes", after.PredictedDurationMinutes,
	)
	e.notify(location, before, after)
	return after
}

func (e *Engine) notify(location string, before, after domain.WeatherState) {
	if e.onChange != nil {
		e.onChange(location, before, after)
	}
}

// overlay stamps the disaster active at location onto st. A zone mirroring
// global also shows a global disaster when it has none of its own.
func (e *Engine) overlay(location string, st domain.WeatherState, mirrorsGlobal bool) domain.WeatherState {
	a, ok := e.disasters.Active(location)
	if !ok && mirrorsGlobal {
		a, ok = e.disasters.Active(domain.GlobalLocation)
	}
	if ok {
		st.Disaster = a.Type
		st.DisasterRemainingMinutes = a.RemainingMinutes
	} else {
		st.Disaster = domain.NoDisaster
		st.DisasterRemainingMinutes = 0
	}
	return st
}

// TriggerDisaster starts disaster t at location. minutes <= 0 draws a duration.
// The engine is permissive unless built WithStrictDisasters.
func (e *Engine) TriggerDisaster(location string, t domain.DisasterType, minutes int) (domain.WeatherState, error) {
	before := e.GetZoneWeather(location)
	if _, err := e.disasters.Trigger(location, t, minutes, before, e.season); err != nil {
		return before, err
	}
	after := e.GetZoneWeather(location)
	e.logger.Info("disaster triggered",
		"location", location,
		"disaster", after.Disaster.String(),
		"remaining_minutes", after.DisasterRemainingMinutes,
	)
	e.notify(location, before, after)
	return after, nil
}

// EndDisaster stops the disaster at location. It reports whether one was active.
func (e *Engine) EndDisaster(location string) bool {
	before := e.GetZoneWeather(location)
	if !e.disasters.End(location) {
		return false
	}
	e.notify(location, before, e.GetZoneWeather(location))
	return true
}

// UpdateDisasters counts active disasters down by elapsed minutes and
// notifies for each one that ends.
func (e *Engine) UpdateDisasters(elapsed int) []string {
	befores := make(map[string]domain.WeatherState)
	for loc := range e.disasters.active {
		befores[loc] = e.GetZoneWeather(loc)
	}
	ended := e.disasters.Update(elapsed)
	for _, loc := range ended {
		e.logger.Info("disaster ended", "location", loc, "disaster", befores[loc].Disaster.String())
		e.notify(loc, befores[loc], e.GetZoneWeather(loc))
	}
	return ended
}

// GetActiveDisaster returns the disaster at location, NoDisaster if none.
// Locations are looked up directly, independent of zone overrides.
func (e *Engine) GetActiveDisaster(location string) domain.DisasterType {
	return e.disasters.Type(location)
}

// ActiveDisasters returns every active disaster keyed by location.
func (e *Engine) ActiveDisasters() map[string]domain.ActiveDisaster {
	return e.disasters.All()
}

// CalculateDisasterProbability is the chance a disaster starts at location
// under its current weather.
func (e *Engine) CalculateDisasterProbability(location string) float64 {
	return domain.CalculateDisasterProbability(e.GetZoneWeather(location))
}

// RollDisasters rolls for a disaster at global and every overriding zone and
// triggers whatever comes up. It returns the locations where one started.
// Nothing in UpdateWeather calls it; a scheduler must opt in.
func (e *Engine) RollDisasters() []string {
	locations := append([]string{domain.GlobalLocation}, e.overridingZones()...)
	var started []string
	for _, loc := range locations {
		st := e.GetZoneWeather(loc)
		d := e.disasters.Roll(st, e.season)
		if d == domain.NoDisaster {
			continue
		}
		if _, err := e.TriggerDisaster(loc, d, 0); err != nil {
			e.logger.Warn("scheduled disaster rejected", "location", loc, "disaster", d.String(), "error", err)
			continue
		}
		started = append(started, loc)
	}
	return started
}

// Snapshot exports the engine's complete state.
func (e *Engine) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Season:      e.season,
		SeasonDay:   e.seasonDay,
		Global:      e.global,
		Zones:       make(map[string]domain.WeatherState, len(e.zones)),
		ZoneConfigs: make(map[string]domain.WeatherConfig, len(e.configs)),
		Disasters:   e.disasters.All(),
	}
	for z, st := range e.zones {
		snap.Zones[z] = st
	}
	for z, cfg := range e.configs {
		snap.ZoneConfigs[z] = cfg.Clone()
	}
	return snap
}

// Restore replaces the engine's state with snap. Restored states start their
// timing from now; no change notifications fire.
func (e *Engine) Restore(snap domain.Snapshot) {
	now := e.clock.Now()
	stamp := func(st domain.WeatherState) domain.WeatherState {
		st.LastChange = now
		st.Season = snap.Season
		st.Disaster = domain.NoDisaster
		st.DisasterRemainingMinutes = 0
		if st.PredictedDurationMinutes <= 0 {
			st.PredictedDurationMinutes = domain.GenerateWeatherDuration(st.Type, snap.Season, e.rng)
		}
		return st
	}

	e.season = snap.Season
	e.seasonDay = max(snap.SeasonDay, 0) % DaysPerSeason
	e.global = stamp(snap.Global)
	e.zones = make(map[string]domain.WeatherState, len(snap.Zones))
	for z, st := range snap.Zones {
		if z == domain.GlobalLocation {
			continue
		}
		e.zones[z] = stamp(st)
	}
	e.configs = make(map[string]domain.WeatherConfig, len(snap.ZoneConfigs))
	for z, cfg := range snap.ZoneConfigs {
		if z == domain.GlobalLocation {
			continue
		}
		e.configs[z] = cfg.Clone()
	}
	e.disasters.restore(snap.Disasters)
	e.forecasts.purge()
	e.logger.Info("weather state restored",
		"season", e.season.String(),
		"zones", len(e.zones),
		"disasters", len(snap.Disasters),
	)
}
