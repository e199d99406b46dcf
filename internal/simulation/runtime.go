package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/jonboulle/clockwork"
)

// ErrRuntimeStopped is returned by calls made after Run has exited.
var ErrRuntimeStopped = errors.New("simulation runtime stopped")

const minutesPerDay = 24 * 60

// Config controls the tick cadence and the change stream.
type Config struct {
	// TickInterval is the wall-clock time between ticks. Zero disables the
	// ticker; the runtime then only advances through Tick and Advance.
	TickInterval time.Duration
	// MinutesPerTick is how many simulation minutes each tick covers.
	MinutesPerTick int
	// AutoscheduleDisasters rolls for new disasters on every tick.
	AutoscheduleDisasters bool
	// ChangeBuffer sizes the Changes channel. Changes are dropped, and counted,
	// when it is full.
	ChangeBuffer int
	// OnStop receives the final state after the loop exits.
	OnStop func(domain.Snapshot)
}

type request struct {
	fn   func(*weather.Engine)
	done chan struct{}
}

// Runtime is the single owner of a weather.Engine. Every query and mutation
// is sent to the goroutine running Run and executed there in arrival order,
// interleaved with ticks.
type Runtime struct {
	engine  *weather.Engine
	clock   clockwork.Clock
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics

	requests chan request
	changes  chan domain.WeatherChange
	stopped  chan struct{}
	started  atomic.Bool
	running  atomic.Bool

	// Owned by the Run goroutine.
	seq        uint64
	dayMinutes int
}

// New wraps engine. The engine must not be used directly once Run starts.
func New(engine *weather.Engine, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Runtime {
	if cfg.MinutesPerTick <= 0 {
		cfg.MinutesPerTick = 10
	}
	if cfg.ChangeBuffer <= 0 {
		cfg.ChangeBuffer = 256
	}
	r := &Runtime{
		engine:   engine,
		clock:    engine.Clock(),
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		requests: make(chan request),
		changes:  make(chan domain.WeatherChange, cfg.ChangeBuffer),
		stopped:  make(chan struct{}),
	}
	engine.OnChange(r.onChange)
	return r
}

// Changes streams every transition in the order it happened. It is closed
// when Run returns.
func (r *Runtime) Changes() <-chan domain.WeatherChange {
	return r.changes
}

// CheckReadiness reports whether the owner loop is accepting requests.
func (r *Runtime) CheckReadiness(_ context.Context) error {
	if !r.running.Load() {
		return errors.New("simulation runtime is not running")
	}
	return nil
}

// Run owns the engine until ctx is cancelled. It may be called once.
func (r *Runtime) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return errors.New("simulation runtime already started")
	}
	defer close(r.changes)
	defer close(r.stopped)

	var tick <-chan time.Time
	if r.cfg.TickInterval > 0 {
		ticker := r.clock.NewTicker(r.cfg.TickInterval)
		defer ticker.Stop()
		tick = ticker.Chan()
	}

	r.running.Store(true)
	r.metrics.RuntimeRunning.Set(1)
	r.metrics.CurrentSeason.Set(float64(r.engine.Season()))
	r.logger.Info("simulation runtime started",
		"tick_interval", r.cfg.TickInterval.String(),
		"minutes_per_tick", r.cfg.MinutesPerTick,
		"season", r.engine.Season().String(),
		"autoschedule_disasters", r.cfg.AutoscheduleDisasters,
	)

	for {
		select {
		case <-ctx.Done():
			r.running.Store(false)
			r.metrics.RuntimeRunning.Set(0)
			r.logger.Info("simulation runtime stopping", "reason", ctx.Err())
			if r.cfg.OnStop != nil {
				r.cfg.OnStop(r.engine.Snapshot())
			}
			r.engine.OnChange(nil)
			return nil
		case <-tick:
			r.exec(func(e *weather.Engine) { r.advance(e, r.cfg.MinutesPerTick) })
		case req := <-r.requests:
			r.exec(req.fn)
			close(req.done)
		}
	}
}

// exec runs fn on the engine and reports a season turn if fn caused one.
func (r *Runtime) exec(fn func(*weather.Engine)) {
	season := r.engine.Season()
	before := r.engine.GlobalWeather()
	fn(r.engine)
	if after := r.engine.GlobalWeather(); after.Season != season {
		r.emit(domain.ChangeSeason, domain.GlobalLocation, before, after)
		r.metrics.CurrentSeason.Set(float64(after.Season))
	}
	r.metrics.DisastersActive.Set(float64(len(r.engine.ActiveDisasters())))
}

// advance moves the simulation forward by minutes: weather first, then the
// disaster countdown, optional disaster rolls, and the season calendar.
func (r *Runtime) advance(e *weather.Engine, minutes int) {
	if minutes <= 0 {
		return
	}
	r.metrics.TicksTotal.Inc()
	e.UpdateWeather(minutes)
	e.UpdateDisasters(minutes)
	if r.cfg.AutoscheduleDisasters {
		e.RollDisasters()
	}
	r.dayMinutes += minutes
	if days := r.dayMinutes / minutesPerDay; days > 0 {
		r.dayMinutes %= minutesPerDay
		e.AdvanceSeason(days)
	}
}

func (r *Runtime) onChange(location string, before, after domain.WeatherState) {
	kind := domain.ChangeWeather
	if before.Disaster != after.Disaster {
		kind = domain.ChangeDisaster
		if after.Disaster != domain.NoDisaster {
			r.metrics.DisastersTriggered.WithLabelValues(after.Disaster.String()).Inc()
		}
	}
	r.emit(kind, location, before, after)
}

func (r *Runtime) emit(kind domain.ChangeKind, location string, before, after domain.WeatherState) {
	r.seq++
	change := domain.NewWeatherChange(kind, location, before, after, r.clock.Now(), r.seq)
	r.metrics.Changes.WithLabelValues(string(kind)).Inc()
	select {
	case r.changes <- change:
	default:
		r.metrics.ChangesDropped.Inc()
		r.logger.Warn("change buffer full, dropping change",
			"location", location,
			"kind", string(kind),
			"seq", change.Seq,
		)
	}
}

// Do runs fn on the owner goroutine and waits for it to finish. fn must not
// retain the engine.
func (r *Runtime) Do(ctx context.Context, fn func(*weather.Engine)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case r.requests <- req:
	case <-r.stopped:
		return ErrRuntimeStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// An accepted request always completes.
	<-req.done
	return nil
}

// call runs fn on the owner goroutine and returns its result.
func call[T any](ctx context.Context, r *Runtime, fn func(*weather.Engine) T) (T, error) {
	var out T
	err := r.Do(ctx, func(e *weather.Engine) { out = fn(e) })
	return out, err
}

// Tick advances the simulation by one tick's worth of minutes.
func (r *Runtime) Tick(ctx context.Context) error {
	return r.Advance(ctx, r.cfg.MinutesPerTick)
}

// Advance moves the simulation forward by minutes as if ticks had covered
// them.
func (r *Runtime) Advance(ctx context.Context, minutes int) error {
	return r.Do(ctx, func(e *weather.Engine) { r.advance(e, minutes) })
}
