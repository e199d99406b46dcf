package weather

import (
	"errors"
	"fmt"
	"sort"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

// ErrIncompatibleDisaster is returned by a strict DisasterEngine when the
// requested disaster cannot occur under the location's weather.
var ErrIncompatibleDisaster = errors.New("disaster incompatible with current weather")

// DisasterEngine tracks the disasters active at each location. Locations are
// opaque; any location id may host a disaster, whether or not it overrides the
// global weather.
type DisasterEngine struct {
	rng    *domain.Rand
	strict bool
	active map[string]domain.ActiveDisaster
}

// NewDisasterEngine returns an engine drawing durations and rolls from rng.
// With strict set, Trigger rejects disasters the current weather could not
// produce; otherwise any disaster may be triggered anywhere.
func NewDisasterEngine(rng *domain.Rand, strict bool) *DisasterEngine {
	return &DisasterEngine{
		rng:    rng,
		strict: strict,
		active: make(map[string]domain.ActiveDisaster),
	}
}

// Strict reports whether compatibility is enforced on Trigger.
func (d *DisasterEngine) Strict() bool { return d.strict }

// Trigger starts disaster t at location for minutes, replacing any disaster
// already there. A non-positive duration draws a randomized one. Triggering
// NoDisaster ends the current one.
func (d *DisasterEngine) Trigger(location string, t domain.DisasterType, minutes int, current domain.WeatherState, season domain.Season) (domain.ActiveDisaster, error) {
	if t == domain.NoDisaster {
		d.End(location)
		return domain.ActiveDisaster{}, nil
	}
	if d.strict && !domain.IsDisasterCompatible(t, current, season) {
		return domain.ActiveDisaster{}, fmt.Errorf("trigger %s at %s under %s: %w", t, location, current.Summary(), ErrIncompatibleDisaster)
	}
	if minutes <= 0 {
		minutes = domain.DisasterDuration(t, d.rng)
	}
	a := domain.ActiveDisaster{Type: t, RemainingMinutes: minutes}
	d.active[location] = a
	return a, nil
}

// Update counts every active disaster down by elapsed minutes and returns the
// locations whose disaster ended, sorted.
func (d *DisasterEngine) Update(elapsed int) []string {
	if elapsed <= 0 {
		return nil
	}
	var ended []string
	for loc, a := range d.active {
		a.RemainingMinutes -= elapsed
		if a.RemainingMinutes <= 0 {
			delete(d.active, loc)
			ended = append(ended, loc)
			continue
		}
		d.active[loc] = a
	}
	sort.Strings(ended)
	return ended
}

// End stops the disaster at location. It reports whether one was active.
func (d *DisasterEngine) End(location string) bool {
	if _, ok := d.active[location]; !ok {
		return false
	}
	delete(d.active, location)
	return true
}

// Active returns the disaster at location, if any.
func (d *DisasterEngine) Active(location string) (domain.ActiveDisaster, bool) {
	a, ok := d.active[location]
	return a, ok
}

// Type returns the disaster type at location, NoDisaster when none is active.
func (d *DisasterEngine) Type(location string) domain.DisasterType {
	return d.active[location].Type
}

// All returns a copy of every active disaster keyed by location.
func (d *DisasterEngine) All() map[string]domain.ActiveDisaster {
	out := make(map[string]domain.ActiveDisaster, len(d.active))
	for k, v := range d.active {
		out[k] = v
	}
	return out
}

// Roll decides whether a disaster starts under state. It returns the chosen
// type, or NoDisaster. Nothing is recorded; the caller triggers the result.
func (d *DisasterEngine) Roll(state domain.WeatherState, season domain.Season) domain.DisasterType {
	p := domain.CalculateDisasterProbability(state)
	if p <= 0 || d.rng.Float64() >= p {
		return domain.NoDisaster
	}
	return domain.SelectDisasterType(state, season, d.rng)
}

func (d *DisasterEngine) reset() {
	d.active = make(map[string]domain.ActiveDisaster)
}

func (d *DisasterEngine) restore(active map[string]domain.ActiveDisaster) {
	d.reset()
	for loc, a := range active {
		if a.Type == domain.NoDisaster || a.RemainingMinutes <= 0 {
			continue
		}
		d.active[loc] = a
	}
}
