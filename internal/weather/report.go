package weather

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

// reportPreviewHours covers the +0h, +4h and +8h forecast entries.
const reportPreviewHours = 12

// Report is the composed description of a zone's weather.
type Report struct {
	Location                 string                 `json:"location"`
	Description              string                 `json:"description"`
	Summary                  string                 `json:"summary"`
	Season                   domain.Season          `json:"season"`
	DurationMinutes          int                    `json:"duration_minutes"`
	PredictedDurationMinutes int                    `json:"predicted_duration_minutes"`
	Effects                  domain.WeatherEffects  `json:"effects"`
	EffectsText              string                 `json:"effects_text"`
	Disaster                 domain.DisasterType    `json:"disaster"`
	DisasterText             string                 `json:"disaster_text,omitempty"`
	Forecast                 []domain.ForecastEntry `json:"forecast"`
}

// GetWeatherReport composes the description, summary, season, timing, effects
// and a three-entry forecast preview for zone.
func (e *Engine) GetWeatherReport(zone string) Report {
	st := e.GetZoneWeather(zone)
	effects := domain.EffectsOf(st)
	r := Report{
		Location:                 zone,
		Description:              domain.DescribeWeather(st),
		Summary:                  st.Summary(),
		Season:                   e.season,
		DurationMinutes:          st.DurationMinutes,
		PredictedDurationMinutes: st.PredictedDurationMinutes,
		Effects:                  effects,
		EffectsText:              domain.DescribeEffects(effects),
		Disaster:                 st.Disaster,
		Forecast:                 e.GetForecast(zone, reportPreviewHours),
	}
	if st.Disaster != domain.NoDisaster {
		r.DisasterText = domain.DescribeDisaster(st.Disaster)
	}
	return r
}

// Text renders the report for players.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Description)
	fmt.Fprintf(&b, "Conditions: %s (%s)\n", r.Summary, r.Season)
	fmt.Fprintf(&b, "Duration: %d of ~%d minutes\n", r.DurationMinutes, r.PredictedDurationMinutes)
	fmt.Fprintf(&b, "Effects: %s\n", r.EffectsText)
	if r.DisasterText != "" {
		fmt.Fprintf(&b, "WARNING: %s\n", r.DisasterText)
	}
	if len(r.Forecast) > 0 {
		b.WriteString("Forecast:\n")
		for _, f := range r.Forecast {
			fmt.Fprintf(&b, "  +%dh  %-14s %3.0f%%\n", f.HoursAhead, f.Type.Display(), f.Confidence*100)
		}
	}
	return b.String()
}
