package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-weather-engine/internal/adapter/sqlite"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/couchcryptid/storm-weather-engine/internal/simulation"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Weather is the query and admin surface served over HTTP.
// simulation.Runtime implements it.
type Weather interface {
	ZoneWeather(ctx context.Context, zone string) (domain.WeatherState, error)
	SetZoneWeather(ctx context.Context, zone string, t domain.WeatherType, i domain.WeatherIntensity) (domain.WeatherState, error)
	ZoneConfig(ctx context.Context, zone string) (domain.WeatherConfig, error)
	SetZoneConfig(ctx context.Context, zone string, cfg domain.WeatherConfig) (domain.WeatherState, error)
	ClearZone(ctx context.Context, zone string) (bool, error)
	Zones(ctx context.Context) ([]string, error)
	Effects(ctx context.Context, zone string) (domain.WeatherEffects, error)
	RoomEffects(ctx context.Context, room string) (domain.WeatherEffects, error)
	ChangeProbability(ctx context.Context, from, to domain.WeatherType, season domain.Season) (float64, error)
	Forecast(ctx context.Context, zone string, hours int) ([]domain.ForecastEntry, error)
	Report(ctx context.Context, zone string) (weather.Report, error)
	Season(ctx context.Context) (simulation.SeasonInfo, error)
	SetSeason(ctx context.Context, s domain.Season) error
	AdvanceSeason(ctx context.Context, days int) (bool, error)
	ForceWeatherChange(ctx context.Context, zone string) (domain.WeatherState, error)
	ResetWeather(ctx context.Context, zone string) (domain.WeatherState, error)
	TriggerDisaster(ctx context.Context, location string, t domain.DisasterType, minutes int) (domain.WeatherState, error)
	EndDisaster(ctx context.Context, location string) (bool, error)
	ActiveDisaster(ctx context.Context, location string) (domain.ActiveDisaster, bool, error)
	ActiveDisasters(ctx context.Context) (map[string]domain.ActiveDisaster, error)
	DisasterProbability(ctx context.Context, location string) (float64, error)
}

// ChangeHistory serves the last published change per location.
type ChangeHistory interface {
	LatestChanges(ctx context.Context) ([]sqlite.StoredChange, error)
}

// Option configures optional routes.
type Option func(*Server)

// WithFeed mounts the live change feed at GET /v1/feed.
func WithFeed(h http.Handler) Option {
	return func(s *Server) { s.feed = h }
}

// WithHistory mounts GET /v1/changes/latest.
func WithHistory(h ChangeHistory) Option {
	return func(s *Server) { s.history = h }
}

// Server exposes health, readiness, metrics and the weather API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics
	weather    Weather
	feed       http.Handler
	history    ChangeHistory
}

// NewServer creates an HTTP server with the operational routes and the /v1 API.
func NewServer(addr string, svc Weather, ready sharedobs.ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:  logger,
		metrics: metrics,
		weather: svc,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/zones", s.handleZones)
	mux.HandleFunc("GET /v1/weather/{zone}", s.handleGetWeather)
	mux.HandleFunc("PUT /v1/weather/{zone}", s.handleSetWeather)
	mux.HandleFunc("DELETE /v1/weather/{zone}", s.handleClearZone)
	mux.HandleFunc("POST /v1/weather/{zone}/force", s.handleForce)
	mux.HandleFunc("POST /v1/weather/{zone}/reset", s.handleReset)
	mux.HandleFunc("GET /v1/weather/{zone}/effects", s.handleEffects)
	mux.HandleFunc("GET /v1/rooms/{room}/effects", s.handleRoomEffects)
	mux.HandleFunc("GET /v1/weather/{zone}/forecast", s.handleForecast)
	mux.HandleFunc("GET /v1/weather/{zone}/report", s.handleReport)
	mux.HandleFunc("GET /v1/weather/{zone}/config", s.handleGetConfig)
	mux.HandleFunc("PUT /v1/weather/{zone}/config", s.handleSetConfig)
	mux.HandleFunc("GET /v1/weather/{zone}/disaster", s.handleGetDisaster)
	mux.HandleFunc("POST /v1/weather/{zone}/disaster", s.handleTriggerDisaster)
	mux.HandleFunc("DELETE /v1/weather/{zone}/disaster", s.handleEndDisaster)
	mux.HandleFunc("GET /v1/disasters", s.handleActiveDisasters)
	mux.HandleFunc("GET /v1/disasters/{type}", s.handleDisasterInfo)
	mux.HandleFunc("GET /v1/season", s.handleGetSeason)
	mux.HandleFunc("PUT /v1/season", s.handleSetSeason)
	mux.HandleFunc("POST /v1/season/advance", s.handleAdvanceSeason)
	mux.HandleFunc("GET /v1/transitions", s.handleTransition)
	if s.feed != nil {
		mux.Handle("GET /v1/feed", s.feed)
	}
	if s.history != nil {
		mux.HandleFunc("GET /v1/changes/latest", s.handleLatestChanges)
	}

	s.httpServer.Handler = s.instrument(mux)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes the connection through for the feed's websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// instrument records request latency by route pattern and status code.
func (s *Server) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
