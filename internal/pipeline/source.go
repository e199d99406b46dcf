package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ChannelSource batches changes read from a channel, typically
// simulation.Runtime.Changes.
type ChannelSource struct {
	changes       <-chan domain.WeatherChange
	flushInterval time.Duration
	clock         clockwork.Clock
}

// NewChannelSource creates a source that returns a batch once it is full or
// flushInterval has passed since its first change.
func NewChannelSource(changes <-chan domain.WeatherChange, flushInterval time.Duration, clock clockwork.Clock) *ChannelSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ChannelSource{changes: changes, flushInterval: flushInterval, clock: clock}
}

// ExtractBatch blocks for the first change, then collects until the batch is
// full or the flush interval expires. It returns ErrSourceClosed, with any
// changes already collected, once the channel is closed.
func (s *ChannelSource) ExtractBatch(ctx context.Context, batchSize int) ([]domain.WeatherChange, error) {
	var first domain.WeatherChange
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c, ok := <-s.changes:
		if !ok {
			return nil, ErrSourceClosed
		}
		first = c
	}

	batch := make([]domain.WeatherChange, 1, batchSize)
	batch[0] = first
	if batchSize <= 1 {
		return batch, nil
	}

	timer := s.clock.NewTimer(s.flushInterval)
	defer timer.Stop()

	for len(batch) < batchSize {
		select {
		case <-ctx.Done():
			return batch, nil
		case <-timer.Chan():
			return batch, nil
		case c, ok := <-s.changes:
			if !ok {
				return batch, ErrSourceClosed
			}
			batch = append(batch, c)
		}
	}
	return batch, nil
}
