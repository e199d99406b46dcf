package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage(t *testing.T) {
	now := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	event := domain.OutputEvent{
		Key:   []byte("harbor"),
		Value: []byte(`{"kind":"weather"}`),
		Headers: map[string]string{
			"weather_type": "Fog",
			"change_id":    "weather-0011223344556677",
			"processed_at": now.Format(time.RFC3339),
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("harbor"), msg.Key)
	assert.JSONEq(t, `{"kind":"weather"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "change_id", msg.Headers[0].Key)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, kafkago.Header{Key: "weather_type", Value: []byte("Fog")}, msg.Headers[2])
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("v")})
	assert.Empty(t, msg.Headers)
}

func TestNewWriter_UsesConfig(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaTopic: "weather-changes"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "weather-changes", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
}

func TestLoadBatch_Empty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "weather-changes"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
