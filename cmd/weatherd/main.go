package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/storm-weather-engine/internal/adapter/http"
	"github.com/couchcryptid/storm-weather-engine/internal/adapter/journal"
	kafkaadapter "github.com/couchcryptid/storm-weather-engine/internal/adapter/kafka"
	"github.com/couchcryptid/storm-weather-engine/internal/adapter/sqlite"
	"github.com/couchcryptid/storm-weather-engine/internal/adapter/ws"
	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/couchcryptid/storm-weather-engine/internal/pipeline"
	"github.com/couchcryptid/storm-weather-engine/internal/simulation"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const journalPrefix = "weather-changes"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("weatherd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	clock := clockwork.NewRealClock()

	zones, err := config.LoadZones(cfg.ZonesFile)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if !cfg.SeedSet {
		seed = time.Now().UnixNano()
	}
	logger.Info("weather seed", "seed", seed)

	engine := weather.New(domain.NewRand(seed),
		weather.WithClock(clock),
		weather.WithLogger(logger),
		weather.WithStrictDisasters(cfg.DisasterStrict),
	)

	var store *sqlite.Store
	restored := false
	if cfg.StorePath != "" {
		store, err = sqlite.Open(cfg.StorePath, clock)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("store close error", "error", err)
			}
		}()

		snap, ok, err := store.LoadSnapshot(context.Background())
		if err != nil {
			return err
		}
		if ok {
			engine.Restore(snap)
			restored = true
			logger.Info("restored weather snapshot", "season", snap.Season.String(), "zones", len(snap.Zones))
		}
	} else {
		logger.Info("snapshot store disabled")
	}
	simulation.ApplyZones(engine, zones, restored)
	logger.Info("zones loaded", "file", cfg.ZonesFile, "zones", len(zones.Zones))

	runtime := simulation.New(engine, simulation.Config{
		TickInterval:          cfg.TickInterval,
		MinutesPerTick:        cfg.MinutesPerTick,
		AutoscheduleDisasters: cfg.DisasterAutoschedule,
		OnStop: func(snap domain.Snapshot) {
			if store == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := store.SaveSnapshot(ctx, snap); err != nil {
				logger.Error("save snapshot failed", "error", err)
				return
			}
			logger.Info("saved weather snapshot")
		},
	}, logger, metrics)

	hub := ws.NewHub(logger, metrics)
	sinks := []pipeline.Sink{{Name: "feed", Loader: hub}}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: writer, Required: true})
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}
	if store != nil {
		sinks = append(sinks, pipeline.Sink{Name: "store", Loader: store})
	}
	var jw *journal.Writer
	if cfg.JournalDir != "" {
		jw = journal.NewWriter(cfg.JournalDir, journalPrefix, clock)
		sinks = append(sinks, pipeline.Sink{Name: "journal", Loader: jw})
		logger.Info("change journal enabled", "dir", cfg.JournalDir)
	}

	source := pipeline.NewChannelSource(runtime.Changes(), cfg.BatchFlushInterval, clock)
	loader := pipeline.NewMultiLoader(logger, metrics, sinks...)
	p := pipeline.New(source, pipeline.NewTransformer(), loader, logger, metrics, cfg.BatchSize).WithClock(clock)

	ready := readiness{runtime}
	opts := []httpadapter.Option{httpadapter.WithFeed(hub.Handler())}
	if store != nil {
		ready = append(ready, store)
		opts = append(opts, httpadapter.WithHistory(store))
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, runtime, ready, logger, metrics, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The pipeline outlives the runtime so the final changes are published;
	// it stops on its own once the change channel closes.
	pipeCtx, pipeCancel := context.WithCancel(context.Background())
	defer pipeCancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runtime.Run(gctx)
	})
	g.Go(func() error {
		return p.Run(pipeCtx)
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		// Bound the drain in case a required sink is down.
		time.AfterFunc(cfg.ShutdownTimeout, pipeCancel)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()

	if writer != nil {
		if cerr := writer.Close(); cerr != nil {
			logger.Error("kafka writer close error", "error", cerr)
		}
	}
	if jw != nil {
		if cerr := jw.Close(); cerr != nil {
			logger.Error("journal close error", "error", cerr)
		}
	}
	return err
}

// readiness is ready when every component is.
type readiness []interface {
	CheckReadiness(ctx context.Context) error
}

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
