package domain

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	stateSchema    = mustCompileSchema("weather_state.schema.json")
	configSchema   = mustCompileSchema("weather_config.schema.json")
	snapshotSchema = mustCompileSchema("snapshot.schema.json")
)

func mustCompileSchema(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	return jsonschema.MustCompileString(name, string(raw))
}

// SchemaNames lists the embedded record schemas by file name.
func SchemaNames() []string {
	return []string{"weather_state.schema.json", "weather_config.schema.json", "snapshot.schema.json"}
}

// SchemaSource returns the raw JSON of an embedded schema.
func SchemaSource(name string) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + name)
}

// WeatherStateRecord is the persisted/wire form of a WeatherState. Field names
// are part of the interop contract. Timestamps and disasters are not carried.
type WeatherStateRecord struct {
	Type                     string `json:"type"`
	Intensity                string `json:"intensity"`
	Season                   string `json:"season"`
	DurationMinutes          int    `json:"duration_minutes"`
	PredictedDurationMinutes int    `json:"predicted_duration_minutes"`
}

// WeatherConfigRecord is the persisted/wire form of a WeatherConfig.
type WeatherConfigRecord struct {
	Pattern           string             `json:"pattern"`
	OverrideGlobal    bool               `json:"override_global"`
	ChangeFrequency   *float64           `json:"change_frequency,omitempty"`
	MaxIntensity      string             `json:"max_intensity,omitempty"`
	TypeProbabilities map[string]float64 `json:"type_probabilities,omitempty"`
}

// DisasterRecord is the persisted form of an active disaster.
type DisasterRecord struct {
	Type             string `json:"type"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

// SnapshotRecord is the persisted form of a whole engine.
type SnapshotRecord struct {
	Season      string                     `json:"season"`
	SeasonDay   int                        `json:"season_day"`
	Global      json.RawMessage            `json:"global"`
	Zones       map[string]json.RawMessage `json:"zones"`
	ZoneConfigs map[string]json.RawMessage `json:"zone_configs"`
	Disasters   map[string]DisasterRecord  `json:"disasters,omitempty"`
}

// ActiveDisaster is a disaster in progress at one location.
type ActiveDisaster struct {
	Type             DisasterType `json:"type"`
	RemainingMinutes int          `json:"remaining_minutes"`
}

// Snapshot is a complete, restorable picture of the weather engine.
type Snapshot struct {
	Season      Season
	SeasonDay   int
	Global      WeatherState
	Zones       map[string]WeatherState
	ZoneConfigs map[string]WeatherConfig
	Disasters   map[string]ActiveDisaster
}

// ToRecord converts s to its wire form.
func (s WeatherState) ToRecord() WeatherStateRecord {
	return WeatherStateRecord{
		Type:                     s.Type.String(),
		Intensity:                s.Intensity.String(),
		Season:                   s.Season.String(),
		DurationMinutes:          s.DurationMinutes,
		PredictedDurationMinutes: s.PredictedDurationMinutes,
	}
}

// FromRecord converts a wire record into a state. Unknown enum text falls back
// to the zero value and a non-positive predicted duration to the type's base.
func (r WeatherStateRecord) FromRecord() WeatherState {
	s := WeatherState{
		Type:                     ParseWeatherType(r.Type),
		Intensity:                ParseIntensity(r.Intensity),
		Season:                   ParseSeason(r.Season),
		DurationMinutes:          r.DurationMinutes,
		PredictedDurationMinutes: r.PredictedDurationMinutes,
	}
	if s.DurationMinutes < 0 {
		s.DurationMinutes = 0
	}
	if s.PredictedDurationMinutes <= 0 {
		s.PredictedDurationMinutes = baseDurationMinutes(s.Type)
	}
	return s
}

// ToRecord converts c to its wire form.
func (c WeatherConfig) ToRecord() WeatherConfigRecord {
	freq := c.ChangeFrequency
	r := WeatherConfigRecord{
		Pattern:         c.Pattern.String(),
		OverrideGlobal:  c.OverrideGlobal,
		ChangeFrequency: &freq,
		MaxIntensity:    c.MaxIntensity.String(),
	}
	if len(c.TypeProbabilities) > 0 {
		r.TypeProbabilities = make(map[string]float64, len(c.TypeProbabilities))
		for w, p := range c.TypeProbabilities {
			r.TypeProbabilities[w.String()] = p
		}
	}
	return r
}

// FromRecord converts a wire record into a config. Missing optional fields take
// the unconfigured-zone defaults; unknown type names are dropped.
func (r WeatherConfigRecord) FromRecord() WeatherConfig {
	c := DefaultWeatherConfig()
	c.Pattern = ParsePattern(r.Pattern)
	c.OverrideGlobal = r.OverrideGlobal
	if r.ChangeFrequency != nil {
		c.ChangeFrequency = *r.ChangeFrequency
	}
	if r.MaxIntensity != "" {
		if i, ok := LookupIntensity(r.MaxIntensity); ok {
			c.MaxIntensity = i
		}
	}
	for name, p := range r.TypeProbabilities {
		w, ok := LookupWeatherType(name)
		if !ok {
			continue
		}
		if c.TypeProbabilities == nil {
			c.TypeProbabilities = make(map[WeatherType]float64)
		}
		c.TypeProbabilities[w] = p
	}
	return c
}

// EncodeWeatherState marshals s as a WeatherStateRecord.
func EncodeWeatherState(s WeatherState) ([]byte, error) {
	return json.Marshal(s.ToRecord())
}

// DecodeWeatherState parses and validates a WeatherStateRecord.
func DecodeWeatherState(data []byte) (WeatherState, error) {
	var rec WeatherStateRecord
	if err := decodeValidated(data, stateSchema, &rec); err != nil {
		return WeatherState{}, fmt.Errorf("decode weather state: %w", err)
	}
	return rec.FromRecord(), nil
}

// EncodeWeatherConfig marshals c as a WeatherConfigRecord.
func EncodeWeatherConfig(c WeatherConfig) ([]byte, error) {
	return json.Marshal(c.ToRecord())
}

// DecodeWeatherConfig parses and validates a WeatherConfigRecord.
func DecodeWeatherConfig(data []byte) (WeatherConfig, error) {
	var rec WeatherConfigRecord
	if err := decodeValidated(data, configSchema, &rec); err != nil {
		return WeatherConfig{}, fmt.Errorf("decode weather config: %w", err)
	}
	return rec.FromRecord(), nil
}

// EncodeSnapshot marshals a snapshot with deterministic key order.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	rec := SnapshotRecord{
		Season:      s.Season.String(),
		SeasonDay:   s.SeasonDay,
		Zones:       make(map[string]json.RawMessage, len(s.Zones)),
		ZoneConfigs: make(map[string]json.RawMessage, len(s.ZoneConfigs)),
	}
	var err error
	if rec.Global, err = EncodeWeatherState(s.Global); err != nil {
		return nil, fmt.Errorf("encode snapshot global: %w", err)
	}
	for _, zone := range sortedKeys(s.Zones) {
		if rec.Zones[zone], err = EncodeWeatherState(s.Zones[zone]); err != nil {
			return nil, fmt.Errorf("encode snapshot zone %s: %w", zone, err)
		}
	}
	for _, zone := range sortedKeys(s.ZoneConfigs) {
		if rec.ZoneConfigs[zone], err = EncodeWeatherConfig(s.ZoneConfigs[zone]); err != nil {
			return nil, fmt.Errorf("encode snapshot config %s: %w", zone, err)
		}
	}
	if len(s.Disasters) > 0 {
		rec.Disasters = make(map[string]DisasterRecord, len(s.Disasters))
		for loc, d := range s.Disasters {
			rec.Disasters[loc] = DisasterRecord{Type: d.Type.String(), RemainingMinutes: d.RemainingMinutes}
		}
	}
	return json.MarshalIndent(rec, "", "  ")
}

// DecodeSnapshot parses and validates a snapshot. A missing top-level section
// or an invalid nested record fails the whole parse.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var rec SnapshotRecord
	if err := decodeValidated(data, snapshotSchema, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	global, err := DecodeWeatherState(rec.Global)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot global: %w", err)
	}
	snap := Snapshot{
		Season:      ParseSeason(rec.Season),
		SeasonDay:   rec.SeasonDay,
		Global:      global,
		Zones:       make(map[string]WeatherState, len(rec.Zones)),
		ZoneConfigs: make(map[string]WeatherConfig, len(rec.ZoneConfigs)),
		Disasters:   make(map[string]ActiveDisaster, len(rec.Disasters)),
	}
	for zone, raw := range rec.Zones {
		st, err := DecodeWeatherState(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot zone %s: %w", zone, err)
		}
		snap.Zones[zone] = st
	}
	for zone, raw := range rec.ZoneConfigs {
		cfg, err := DecodeWeatherConfig(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot config %s: %w", zone, err)
		}
		snap.ZoneConfigs[zone] = cfg
	}
	for loc, d := range rec.Disasters {
		t := ParseDisasterType(d.Type)
		if t == NoDisaster || d.RemainingMinutes <= 0 {
			continue
		}
		snap.Disasters[loc] = ActiveDisaster{Type: t, RemainingMinutes: d.RemainingMinutes}
	}
	return snap, nil
}

// decodeValidated checks data against schema before unmarshalling into dst.
func decodeValidated(data []byte, schema *jsonschema.Schema, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
