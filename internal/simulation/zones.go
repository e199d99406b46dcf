package simulation

import (
	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
)

// ApplyZones installs a zones file on an engine that is not running yet.
// Zone configs always apply. The season and initial conditions only seed an
// engine that was not restored from a snapshot.
func ApplyZones(e *weather.Engine, z config.Zones, restored bool) {
	if !restored && z.HasSeason {
		e.SetSeason(z.Season)
	}
	if !restored && z.Global != nil {
		e.SetGlobalWeather(z.Global.Type, z.Global.Intensity)
	}
	for _, zone := range z.Zones {
		e.SetZoneConfig(zone.ID, zone.Config)
		if !restored && zone.Initial != nil {
			e.SetZoneWeather(zone.ID, zone.Initial.Type, zone.Initial.Intensity)
		}
	}
}
