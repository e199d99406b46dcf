package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/adapter/journal"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/pipeline"
	"github.com/couchcryptid/storm-weather-engine/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testSnapshot(t *testing.T) []byte {
	t.Helper()
	e := weather.New(domain.NewRand(3), weather.WithClock(clockwork.NewFakeClockAt(testStart)))
	cfg := domain.DefaultWeatherConfig()
	cfg.OverrideGlobal = true
	e.SetZoneConfig("harbor", cfg)
	e.SetZoneWeather("harbor", domain.Fog, domain.Moderate)
	_, err := e.TriggerDisaster("harbor", domain.Earthquake, 20)
	require.NoError(t, err)

	raw, err := domain.EncodeSnapshot(e.Snapshot())
	require.NoError(t, err)
	return raw
}

func TestRun_ValidSnapshot(t *testing.T) {
	path := writeFile(t, "snapshot.json", testSnapshot(t))

	var out bytes.Buffer
	code := run(inputs{snapshot: path}, &out)
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_InvalidSnapshot(t *testing.T) {
	path := writeFile(t, "snapshot.json", []byte(`{"season":"Spring"}`))

	var out bytes.Buffer
	assert.Equal(t, 1, run(inputs{snapshot: path}, &out))
	assert.Contains(t, out.String(), "Validation FAILED.")
	assert.Contains(t, out.String(), "decode snapshot")
}

func TestRun_StateRecords(t *testing.T) {
	valid := writeFile(t, "states.json", []byte(`[
		{"type":"Clear","intensity":"Calm","season":"Spring","duration_minutes":0,"predicted_duration_minutes":120},
		{"type":"Fog","intensity":"Light","season":"Autumn","duration_minutes":30,"predicted_duration_minutes":90}
	]`))
	var out bytes.Buffer
	assert.Equal(t, 0, run(inputs{state: valid}, &out), out.String())

	invalid := writeFile(t, "state.json", []byte(`{"type":"Clear"}`))
	out.Reset()
	assert.Equal(t, 1, run(inputs{state: invalid}, &out))
	assert.Contains(t, out.String(), "record 0")
}

func TestRun_ConfigRecord(t *testing.T) {
	path := writeFile(t, "config.json", []byte(`{"pattern":"Stable","override_global":true,"change_frequency":0.5,"max_intensity":"Moderate"}`))
	var out bytes.Buffer
	assert.Equal(t, 0, run(inputs{config: path}, &out), out.String())
}

func TestRun_Zones(t *testing.T) {
	good := writeFile(t, "zones.yaml", []byte(`
zones:
  - id: harbor
    pattern: Stable
`))
	var out bytes.Buffer
	assert.Equal(t, 0, run(inputs{zones: good}, &out), out.String())

	tooStrong := writeFile(t, "zones.yaml", []byte(`
zones:
  - id: harbor
    max_intensity: Light
    initial: {type: Heavy_Rain, intensity: Severe}
`))
	out.Reset()
	assert.Equal(t, 1, run(inputs{zones: tooStrong}, &out))
	assert.Contains(t, out.String(), "exceeds max_intensity")
}

func writeJournal(t *testing.T, dir string, changes ...domain.WeatherChange) {
	t.Helper()
	w := journal.NewWriter(dir, journalPrefix, clockwork.NewFakeClockAt(testStart))
	tr := pipeline.NewTransformer()
	events := make([]domain.OutputEvent, 0, len(changes))
	for _, c := range changes {
		ev, err := tr.Transform(context.Background(), c)
		require.NoError(t, err)
		events = append(events, ev)
	}
	require.NoError(t, w.LoadBatch(context.Background(), events))
	require.NoError(t, w.Close())
}

func TestRun_Journal(t *testing.T) {
	before := domain.DefaultWeatherState(domain.Summer, testStart)
	after := before
	after.Type = domain.Cloudy

	dir := t.TempDir()
	writeJournal(t, dir,
		domain.NewWeatherChange(domain.ChangeWeather, "global", before, after, testStart, 1),
		domain.NewWeatherChange(domain.ChangeWeather, "harbor", before, after, testStart, 2),
	)

	var out bytes.Buffer
	assert.Equal(t, 0, run(inputs{journalDir: dir}, &out), out.String())
	assert.Contains(t, out.String(), "Change journal")
}

func TestRun_JournalOutOfOrder(t *testing.T) {
	before := domain.DefaultWeatherState(domain.Summer, testStart)
	after := before
	after.Type = domain.Cloudy

	dir := t.TempDir()
	writeJournal(t, dir,
		domain.NewWeatherChange(domain.ChangeWeather, "global", before, after, testStart, 5),
		domain.NewWeatherChange(domain.ChangeWeather, "harbor", before, after, testStart, 3),
	)

	var out bytes.Buffer
	assert.Equal(t, 1, run(inputs{journalDir: dir}, &out))
	assert.Contains(t, out.String(), "seq 3 does not follow 5")
}

func TestRun_EmptyJournalDir(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(inputs{journalDir: t.TempDir()}, &out))
	assert.Contains(t, out.String(), "no weather-changes journal files")
}

func TestInputsEmpty(t *testing.T) {
	assert.True(t, inputs{}.empty())
	assert.True(t, inputs{journalPrefix: "x"}.empty())
	assert.False(t, inputs{zones: "zones.yaml"}.empty())
}
