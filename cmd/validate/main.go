// Command validate checks persisted weather data against the record schemas
// and the engine's own rules: snapshots, standalone state and config records,
// zones files, and change journals. Only the inputs given are checked.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -snapshot data/snapshot.json \
//	  -zones zones.yaml \
//	  -journal data/journal
//
//	go run ./cmd/validate -print-schema snapshot.schema.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/couchcryptid/storm-weather-engine/internal/adapter/journal"
	"github.com/couchcryptid/storm-weather-engine/internal/config"
	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

const journalPrefix = "weather-changes"

type inputs struct {
	snapshot      string
	state         string
	config        string
	zones         string
	journalDir    string
	journalPrefix string
}

func (in inputs) empty() bool {
	return in.snapshot == "" && in.state == "" && in.config == "" && in.zones == "" && in.journalDir == ""
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	records int
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	var in inputs
	flag.StringVar(&in.snapshot, "snapshot", "", "path to a snapshot JSON file")
	flag.StringVar(&in.state, "state", "", "path to a weather state record, or an array of them")
	flag.StringVar(&in.config, "config", "", "path to a weather config record, or an array of them")
	flag.StringVar(&in.zones, "zones", "", "path to a zones YAML file")
	flag.StringVar(&in.journalDir, "journal", "", "directory of zstd JSONL change journals")
	flag.StringVar(&in.journalPrefix, "journal-prefix", journalPrefix, "journal file name prefix")
	printSchema := flag.String("print-schema", "", "print an embedded schema and exit (one of the names listed by -schemas)")
	listSchemas := flag.Bool("schemas", false, "list the embedded schemas and exit")
	flag.Parse()

	switch {
	case *listSchemas:
		for _, name := range domain.SchemaNames() {
			fmt.Println(name)
		}
		return
	case *printSchema != "":
		raw, err := domain.SchemaSource(*printSchema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unknown schema %q\n", *printSchema)
			os.Exit(1)
		}
		os.Stdout.Write(raw) //nolint:errcheck // best-effort output
		return
	case in.empty():
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(in, os.Stdout))
}

func run(in inputs, out io.Writer) int {
	fmt.Fprintln(out, "=== Weather Data Validation ===")

	var phases []*phase
	if in.snapshot != "" {
		phases = append(phases, validateSnapshot(in.snapshot))
	}
	if in.state != "" {
		phases = append(phases, validateRecords(in.state, "Weather state records", func(raw []byte) error {
			_, err := domain.DecodeWeatherState(raw)
			return err
		}))
	}
	if in.config != "" {
		phases = append(phases, validateRecords(in.config, "Weather config records", func(raw []byte) error {
			_, err := domain.DecodeWeatherConfig(raw)
			return err
		}))
	}
	if in.zones != "" {
		phases = append(phases, validateZones(in.zones))
	}
	if in.journalDir != "" {
		prefix := in.journalPrefix
		if prefix == "" {
			prefix = journalPrefix
		}
		phases = append(phases, validateJournal(in.journalDir, prefix))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %6d records  %s\n", p.name, p.records, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateSnapshot decodes a snapshot, checks it is internally consistent and
// that it survives an encode/decode round trip unchanged.
func validateSnapshot(path string) *phase {
	p := &phase{name: "Snapshot"}
	raw, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	snap, err := domain.DecodeSnapshot(raw)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.records = 1 + len(snap.Zones) + len(snap.ZoneConfigs) + len(snap.Disasters)

	if snap.SeasonDay < 0 {
		p.errorf("season_day %d is negative", snap.SeasonDay)
	}
	for zone, st := range snap.Zones {
		if st.Season != snap.Season {
			p.errorf("zone %s: season %s does not match snapshot season %s", zone, st.Season, snap.Season)
		}
		if cfg, ok := snap.ZoneConfigs[zone]; ok && st.Intensity > cfg.MaxIntensity {
			p.errorf("zone %s: intensity %s exceeds max_intensity %s", zone, st.Intensity, cfg.MaxIntensity)
		}
	}
	if snap.Global.Season != snap.Season {
		p.errorf("global: season %s does not match snapshot season %s", snap.Global.Season, snap.Season)
	}

	encoded, err := domain.EncodeSnapshot(snap)
	if err != nil {
		p.errorf("re-encode: %v", err)
		return p
	}
	again, err := domain.DecodeSnapshot(encoded)
	if err != nil {
		p.errorf("decode re-encoded snapshot: %v", err)
		return p
	}
	reencoded, err := domain.EncodeSnapshot(again)
	if err != nil {
		p.errorf("re-encode twice: %v", err)
		return p
	}
	if !bytes.Equal(encoded, reencoded) {
		p.errorf("snapshot does not survive a round trip")
	}
	return p
}

// validateRecords checks a file holding one record or an array of records.
func validateRecords(path, name string, decode func([]byte) error) *phase {
	p := &phase{name: name}
	raw, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	raw = bytes.TrimSpace(raw)
	records := []json.RawMessage{raw}
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &records); err != nil {
			p.errorf("parse %s: %v", path, err)
			return p
		}
	}
	for i, rec := range records {
		p.records++
		if err := decode(rec); err != nil {
			p.errorf("record %d: %v", i, err)
		}
	}
	return p
}

func validateZones(path string) *phase {
	p := &phase{name: "Zones file"}
	zones, err := config.LoadZones(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.records = len(zones.Zones)
	for _, z := range zones.Zones {
		if z.Initial != nil && z.Initial.Intensity > z.Config.MaxIntensity {
			p.errorf("zone %s: initial intensity %s exceeds max_intensity %s",
				z.ID, z.Initial.Intensity, z.Config.MaxIntensity)
		}
	}
	return p
}

// validateJournal checks every change in the journal: IDs match content,
// sequence numbers increase and kinds are known.
func validateJournal(dir, prefix string) *phase {
	p := &phase{name: "Change journal"}
	files, err := journal.Files(dir, prefix)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(files) == 0 {
		p.errorf("no %s journal files in %s", prefix, dir)
		return p
	}

	kinds := []domain.ChangeKind{domain.ChangeWeather, domain.ChangeDisaster, domain.ChangeSeason}
	seen := make(map[string]string)
	var lastSeq uint64
	for _, f := range files {
		changes, err := journal.ReadFile(f)
		if err != nil {
			p.errorf("%s: %v", f, err)
			continue
		}
		for i, c := range changes {
			p.records++
			where := fmt.Sprintf("%s line %d", f, i+1)
			if !slices.Contains(kinds, c.Kind) {
				p.errorf("%s: unknown kind %q", where, c.Kind)
			}
			if want := domain.EnrichWeatherChange(c).ID; c.ID != want {
				p.errorf("%s: id %s does not match content (want %s)", where, c.ID, want)
			}
			if prev, dup := seen[c.ID]; dup {
				p.errorf("%s: duplicate id %s (first at %s)", where, c.ID, prev)
			}
			seen[c.ID] = where
			// Sequence numbers restart when the service restarts.
			if c.Seq <= lastSeq && c.Seq != 1 {
				p.errorf("%s: seq %d does not follow %d", where, c.Seq, lastSeq)
			}
			lastSeq = c.Seq
		}
	}
	return p
}
