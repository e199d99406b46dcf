package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ChangeKind classifies a WeatherChange.
type ChangeKind string

const (
	ChangeWeather  ChangeKind = "weather"
	ChangeDisaster ChangeKind = "disaster"
	ChangeSeason   ChangeKind = "season"
)

// WeatherChange is one transition at a location, as handed to the publishing
// pipeline and live feed.
type WeatherChange struct {
	ID          string         `json:"id"`
	Kind        ChangeKind     `json:"kind"`
	Location    string         `json:"location"`
	Before      WeatherState   `json:"before"`
	After       WeatherState   `json:"after"`
	Effects     WeatherEffects `json:"effects"`
	Description string         `json:"description,omitempty"`
	At          time.Time      `json:"at"`
	Seq         uint64         `json:"seq"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// OutputEvent is the serialized form destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewWeatherChange captures a before/after pair observed at location.
func NewWeatherChange(kind ChangeKind, location string, before, after WeatherState, at time.Time, seq uint64) WeatherChange {
	return WeatherChange{
		Kind:     kind,
		Location: location,
		Before:   before,
		After:    after,
		At:       at,
		Seq:      seq,
	}
}

// generateChangeID hashes the identifying fields of a change so a replayed
// change produces the same ID.
func generateChangeID(c WeatherChange) string {
	input := fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s",
		c.Kind, c.Location, c.Seq, c.At.UTC().Format(time.RFC3339Nano),
		c.After.Type, c.After.Intensity, c.After.Disaster)
	hash := sha256.Sum256([]byte(input))
	return string(c.Kind) + "-" + hex.EncodeToString(hash[:8])
}

// EnrichWeatherChange assigns the deterministic ID, derives the effects and
// prose for the new state, and stamps the processing time.
func EnrichWeatherChange(c WeatherChange) WeatherChange {
	c.ID = generateChangeID(c)
	c.Effects = EffectsOf(c.After)
	switch c.Kind {
	case ChangeDisaster:
		c.Description = DescribeDisaster(c.After.Disaster)
	case ChangeSeason:
		c.Description = fmt.Sprintf("The season turns to %s.", c.After.Season)
	default:
		c.Description = DescribeWeather(c.After)
	}
	c.ProcessedAt = clock.Now()
	return c
}

// SerializeWeatherChange marshals c into an OutputEvent keyed by location so
// every change at one location lands on the same partition.
func SerializeWeatherChange(c WeatherChange) (OutputEvent, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize weather change: %w", err)
	}
	return OutputEvent{
		Key:   []byte(c.Location),
		Value: data,
		Headers: map[string]string{
			"change_id":    c.ID,
			"change_kind":  string(c.Kind),
			"weather_type": c.After.Type.String(),
			"processed_at": c.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
