// Command weathersim runs the weather engine offline on a simulated clock and
// writes every change it produces, enriched and serialized the way weatherd
// publishes them. The same seed and flags always produce the same output.
//
// Usage:
//
//	go run ./cmd/weathersim -seed 42 -days 3 -zones zones.yaml > changes.jsonl
//	go run ./cmd/weathersim -seed 42 -days 1 -format text
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/adapter/journal"
	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/couchcryptid/storm-weather-engine/internal/pipeline"
	"github.com/couchcryptid/storm-weather-engine/internal/simulation"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	minutesPerDay = 24 * 60
	changeBuffer  = 4096
	journalPrefix = "weathersim"
)

type options struct {
	seed           int64
	days           int
	minutesPerTick int
	zonesFile      string
	start          time.Time
	format         string
	disasters      bool
	strict         bool
	journalDir     string
}

func main() {
	var o options
	start := flag.String("start", "2026-03-01T00:00:00Z", "simulated start time (RFC 3339)")
	flag.Int64Var(&o.seed, "seed", 1, "random seed")
	flag.IntVar(&o.days, "days", 1, "simulated days to run")
	flag.IntVar(&o.minutesPerTick, "minutes-per-tick", 10, "simulated minutes per tick")
	flag.StringVar(&o.zonesFile, "zones", "", "zones file (YAML)")
	flag.StringVar(&o.format, "format", "jsonl", "output format: jsonl or text")
	flag.BoolVar(&o.disasters, "disasters", false, "roll disasters every tick")
	flag.BoolVar(&o.strict, "strict-disasters", false, "reject disasters the weather cannot produce")
	flag.StringVar(&o.journalDir, "journal", "", "also write zstd JSONL journal files to this directory")
	flag.Parse()

	t, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	o.start = t

	n, err := run(context.Background(), o, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("simulated %d days from seed %d: %d changes", o.days, o.seed, n)
}

func (o options) validate() error {
	switch {
	case o.days <= 0:
		return fmt.Errorf("days must be positive, got %d", o.days)
	case o.minutesPerTick <= 0:
		return fmt.Errorf("minutes-per-tick must be positive, got %d", o.minutesPerTick)
	case o.format != "jsonl" && o.format != "text":
		return fmt.Errorf("unknown format %q (want jsonl or text)", o.format)
	}
	return nil
}

// run simulates o.days and writes the changes to out. It returns the number
// of changes written.
func run(ctx context.Context, o options, out io.Writer) (int, error) {
	if err := o.validate(); err != nil {
		return 0, err
	}
	zones, err := config.LoadZones(o.zonesFile)
	if err != nil {
		return 0, err
	}

	clock := clockwork.NewFakeClockAt(o.start)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	engine := weather.New(domain.NewRand(o.seed),
		weather.WithClock(clock),
		weather.WithLogger(logger),
		weather.WithStrictDisasters(o.strict),
	)
	simulation.ApplyZones(engine, zones, false)

	rt := simulation.New(engine, simulation.Config{
		MinutesPerTick:        o.minutesPerTick,
		AutoscheduleDisasters: o.disasters,
		ChangeBuffer:          changeBuffer,
	}, logger, metrics)

	bw := bufio.NewWriter(out)
	sinks := []pipeline.Sink{{Name: "output", Loader: &lineLoader{w: bw, text: o.format == "text"}, Required: true}}
	var jw *journal.Writer
	if o.journalDir != "" {
		jw = journal.NewWriter(o.journalDir, journalPrefix, clock)
		sinks = append(sinks, pipeline.Sink{Name: "journal", Loader: jw, Required: true})
	}
	loader := pipeline.NewMultiLoader(logger, metrics, sinks...)
	transformer := pipeline.NewTransformer()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- rt.Run(runCtx) }()

	written, simErr := simulate(ctx, o, clock, rt, transformer, loader)

	cancel()
	if err := <-done; err != nil && simErr == nil {
		simErr = err
	}
	if simErr == nil {
		// Anything emitted while stopping.
		n, err := publish(ctx, drainClosed(rt.Changes()), transformer, loader)
		written += n
		simErr = err
	}
	if jw != nil {
		if err := jw.Close(); err != nil && simErr == nil {
			simErr = fmt.Errorf("close journal: %w", err)
		}
	}
	if err := bw.Flush(); err != nil && simErr == nil {
		simErr = fmt.Errorf("flush output: %w", err)
	}
	return written, simErr
}

func simulate(ctx context.Context, o options, clock *clockwork.FakeClock, rt *simulation.Runtime, t pipeline.Transformer, l pipeline.BatchLoader) (int, error) {
	ticks := o.days * minutesPerDay / o.minutesPerTick
	step := time.Duration(o.minutesPerTick) * time.Minute

	written := 0
	for range ticks {
		clock.Advance(step)
		if err := rt.Tick(ctx); err != nil {
			return written, err
		}
		// Tick returns after the runtime has emitted the tick's changes.
		n, err := publish(ctx, drain(rt.Changes()), t, l)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func publish(ctx context.Context, changes []domain.WeatherChange, t pipeline.Transformer, l pipeline.BatchLoader) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	events := make([]domain.OutputEvent, 0, len(changes))
	for _, c := range changes {
		ev, err := t.Transform(ctx, c)
		if err != nil {
			return 0, err
		}
		events = append(events, ev)
	}
	if err := l.LoadBatch(ctx, events); err != nil {
		return 0, err
	}
	return len(events), nil
}

// drain takes whatever is buffered without blocking.
func drain(ch <-chan domain.WeatherChange) []domain.WeatherChange {
	var out []domain.WeatherChange
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, c)
		default:
			return out
		}
	}
}

// drainClosed reads a channel the runtime has closed.
func drainClosed(ch <-chan domain.WeatherChange) []domain.WeatherChange {
	var out []domain.WeatherChange
	for c := range ch {
		out = append(out, c)
	}
	return out
}

// lineLoader writes one line per event: the serialized change, or a readable
// summary of it.
type lineLoader struct {
	w    *bufio.Writer
	text bool
}

func (l *lineLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	for _, ev := range events {
		line := ev.Value
		if l.text {
			var c domain.WeatherChange
			if err := json.Unmarshal(ev.Value, &c); err != nil {
				return fmt.Errorf("decode change: %w", err)
			}
			line = []byte(formatChange(c))
		}
		if _, err := l.w.Write(line); err != nil {
			return err
		}
		if err := l.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func formatChange(c domain.WeatherChange) string {
	switch c.Kind {
	case domain.ChangeSeason:
		return fmt.Sprintf("%s  %-12s season    %s -> %s",
			c.At.Format(time.RFC3339), c.Location, c.Before.Season, c.After.Season)
	case domain.ChangeDisaster:
		return fmt.Sprintf("%s  %-12s disaster  %s -> %s  %s",
			c.At.Format(time.RFC3339), c.Location, c.Before.Disaster, c.After.Disaster, c.Description)
	default:
		return fmt.Sprintf("%s  %-12s weather   %s -> %s  %s",
			c.At.Format(time.RFC3339), c.Location, c.Before.Summary(), c.After.Summary(), c.Description)
	}
}
