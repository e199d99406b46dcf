package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
)

// Sink is a named BatchLoader.
type Sink struct {
	Name   string
	Loader BatchLoader
	// Required sinks fail the batch, causing a retry. Failures of optional
	// sinks are logged and counted only.
	Required bool
}

// MultiLoader loads each batch into every sink in order.
type MultiLoader struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMultiLoader creates a MultiLoader over sinks.
func NewMultiLoader(logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *MultiLoader {
	return &MultiLoader{sinks: sinks, logger: logger, metrics: metrics}
}

// LoadBatch writes events to every sink and joins the errors of required
// sinks.
func (m *MultiLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Loader.LoadBatch(ctx, events); err != nil {
			m.metrics.SinkErrors.WithLabelValues(s.Name).Inc()
			if s.Required {
				errs = append(errs, fmt.Errorf("load %s: %w", s.Name, err))
				continue
			}
			m.logger.Warn("optional sink failed", "sink", s.Name, "error", err, "batch_size", len(events))
		}
	}
	return errors.Join(errs...)
}
