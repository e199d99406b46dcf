package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/simulation"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
)

const (
	defaultForecastHours = 24
	maxForecastHours     = 7 * 24
	maxBodyBytes         = 64 * 1024
)

type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

type weatherResponse struct {
	Location    string              `json:"location"`
	Weather     domain.WeatherState `json:"weather"`
	Summary     string              `json:"summary"`
	Description string              `json:"description"`
}

type conditionRequest struct {
	Type      string `json:"type"`
	Intensity string `json:"intensity"`
}

type disasterRequest struct {
	Type    string `json:"type"`
	Minutes int    `json:"minutes"`
}

type seasonRequest struct {
	Season string `json:"season"`
}

type advanceRequest struct {
	Days int `json:"days"`
}

func newWeatherResponse(location string, st domain.WeatherState) weatherResponse {
	return weatherResponse{
		Location:    location,
		Weather:     st,
		Summary:     st.Summary(),
		Description: domain.DescribeWeather(st),
	}
}

// writeError maps domain and runtime errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *domain.UnknownNameError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Suggestion: unknown.Suggestion})
	case errors.Is(err, weather.ErrIncompatibleDisaster):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, simulation.ErrRuntimeStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.weather.Zones(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if zones == nil {
		zones = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"zones": zones})
}

func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	st, err := s.weather.ZoneWeather(r.Context(), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeatherResponse(zone, st))
}

func (s *Server) handleSetWeather(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := config.Condition(req).Resolve()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	zone := r.PathValue("zone")
	st, err := s.weather.SetZoneWeather(r.Context(), zone, c.Type, c.Intensity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeatherResponse(zone, st))
}

func (s *Server) handleClearZone(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	if zone == domain.GlobalLocation {
		s.writeError(w, r, badRequest("the global location cannot be cleared"))
		return
	}
	removed, err := s.weather.ClearZone(r.Context(), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("zone %q has no state or config", zone)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForce(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	st, err := s.weather.ForceWeatherChange(r.Context(), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeatherResponse(zone, st))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	st, err := s.weather.ResetWeather(r.Context(), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWeatherResponse(zone, st))
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	e, err := s.weather.Effects(r.Context(), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location":    zone,
		"effects":     e,
		"description": domain.DescribeEffects(e),
	})
}

func (s *Server) handleRoomEffects(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	e, err := s.weather.RoomEffects(r.Context(), room)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":        room,
		"effects":     e,
		"description": domain.DescribeEffects(e),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	hours := defaultForecastHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxForecastHours {
			s.writeError(w, r, badRequest("hours must be an integer between 0 and %d", maxForecastHours))
			return
		}
		hours = n
	}
	zone := r.PathValue("zone")
	entries, err := s.weather.Forecast(r.Context(), zone, hours)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ForecastEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"location": zone, "hours": hours, "forecast": entries})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.weather.Report(r.Context(), r.PathValue("zone"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.Text()))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.weather.ZoneConfig(r.Context(), r.PathValue("zone"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.ToRecord())
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	if zone == domain.GlobalLocation {
		s.writeError(w, r, badRequest("the global location has no config"))
		return
	}
	var spec config.ZoneSpec
	if err := decodeBody(w, r, &spec); err != nil {
		s.writeError(w, r, err)
		return
	}
	spec.ID = zone
	spec.Initial = nil
	spec.Normalize()
	setting, err := spec.Resolve()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.weather.SetZoneConfig(r.Context(), zone, setting.Config)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location": zone,
		"config":   setting.Config.ToRecord(),
		"weather":  st,
	})
}

func (s *Server) handleGetDisaster(w http.ResponseWriter, r *http.Request) {
	loc := r.PathValue("zone")
	a, ok, err := s.weather.ActiveDisaster(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.weather.DisasterProbability(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{
		"location":    loc,
		"disaster":    domain.NoDisaster,
		"probability": p,
	}
	if ok {
		resp["disaster"] = a.Type
		resp["remaining_minutes"] = a.RemainingMinutes
		resp["description"] = domain.DescribeDisaster(a.Type)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// A zone that mirrors global shows the global disaster as its own.
	st, err := s.weather.ZoneWeather(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if st.Disaster != domain.NoDisaster {
		resp["disaster"] = st.Disaster
		resp["remaining_minutes"] = st.DisasterRemainingMinutes
		resp["description"] = domain.DescribeDisaster(st.Disaster)
		resp["inherited_from"] = domain.GlobalLocation
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTriggerDisaster(w http.ResponseWriter, r *http.Request) {
	var req disasterRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := domain.StrictDisasterType(req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if d == domain.NoDisaster {
		s.writeError(w, r, badRequest("use DELETE to end a disaster"))
		return
	}
	loc := r.PathValue("zone")
	st, err := s.weather.TriggerDisaster(r.Context(), loc, d, req.Minutes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWeatherResponse(loc, st))
}

func (s *Server) handleEndDisaster(w http.ResponseWriter, r *http.Request) {
	loc := r.PathValue("zone")
	ended, err := s.weather.EndDisaster(r.Context(), loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ended {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no disaster active at %q", loc)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActiveDisasters(w http.ResponseWriter, r *http.Request) {
	all, err := s.weather.ActiveDisasters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disasters": all})
}

func (s *Server) handleDisasterInfo(w http.ResponseWriter, r *http.Request) {
	d, err := domain.StrictDisasterType(r.PathValue("type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	global, err := s.weather.ZoneWeather(r.Context(), domain.GlobalLocation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":                   d,
		"name":                   d.Display(),
		"description":            domain.DescribeDisaster(d),
		"compatible_with_global": domain.IsDisasterCompatible(d, global, global.Season),
	})
}

func (s *Server) handleGetSeason(w http.ResponseWriter, r *http.Request) {
	info, err := s.weather.Season(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSetSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	season, err := domain.StrictSeason(req.Season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.weather.SetSeason(r.Context(), season); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetSeason(w, r)
}

func (s *Server) handleAdvanceSeason(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Days <= 0 || req.Days > weather.MaxAdvanceDays {
		s.writeError(w, r, badRequest("days must be between 1 and %d", weather.MaxAdvanceDays))
		return
	}
	turned, err := s.weather.AdvanceSeason(r.Context(), req.Days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := s.weather.Season(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turned": turned, "season": info.Season, "day": info.Day})
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := domain.StrictWeatherType(q.Get("from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := domain.StrictWeatherType(q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var season domain.Season
	if raw := strings.TrimSpace(q.Get("season")); raw != "" {
		if season, err = domain.StrictSeason(raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		info, err := s.weather.Season(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		season = info.Season
	}
	p, err := s.weather.ChangeProbability(r.Context(), from, to, season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "season": season, "probability": p})
}

func (s *Server) handleLatestChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := s.history.LatestChanges(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]json.RawMessage, 0, len(changes))
	for _, c := range changes {
		out = append(out, json.RawMessage(c.Body))
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": out})
}
