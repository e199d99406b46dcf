package pipeline

import (
	"context"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

// ChangeTransformer implements Transformer using the domain enrich and
// serialize functions.
type ChangeTransformer struct{}

// NewTransformer creates a ChangeTransformer.
func NewTransformer() *ChangeTransformer {
	return &ChangeTransformer{}
}

func (t *ChangeTransformer) Transform(_ context.Context, change domain.WeatherChange) (domain.OutputEvent, error) {
	return domain.SerializeWeatherChange(domain.EnrichWeatherChange(change))
}
