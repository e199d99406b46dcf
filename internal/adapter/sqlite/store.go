package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/jonboulle/clockwork"

	_ "modernc.org/sqlite"
)

// snapshotsKept bounds the snapshot history.
const snapshotsKept = 20

// Store persists engine snapshots and the latest change per location.
// Its LoadBatch makes it a pipeline.BatchLoader.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// StoredChange is the most recent published change at one location.
type StoredChange struct {
	Location    string    `json:"location"`
	ChangeID    string    `json:"change_id"`
	Kind        string    `json:"kind"`
	WeatherType string    `json:"weather_type"`
	ProcessedAt time.Time `json:"processed_at"`
	Body        []byte    `json:"-"`
}

// Open opens or creates the database at path. Use ":memory:" in tests.
func Open(path string, clock clockwork.Clock) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, clock: clock}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at TEXT NOT NULL,
			season TEXT NOT NULL,
			body TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS latest_changes (
			location TEXT PRIMARY KEY,
			change_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			weather_type TEXT NOT NULL,
			processed_at TEXT NOT NULL,
			body TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// SaveSnapshot appends snap to the history and prunes old entries.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	body, err := domain.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (saved_at, season, body) VALUES (?, ?, ?)`,
		s.clock.Now().UTC().Format(time.RFC3339Nano), snap.Season.String(), string(body),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		snapshotsKept,
	); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the newest snapshot. ok is false when none was saved.
func (s *Store) LoadSnapshot(ctx context.Context) (snap domain.Snapshot, ok bool, err error) {
	var body string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("query snapshot: %w", err)
	}
	snap, err = domain.DecodeSnapshot([]byte(body))
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// LoadBatch records each event as the latest change at its location. Later
// events in the batch win.
func (s *Store) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin changes tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO latest_changes (location, change_id, kind, weather_type, processed_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			change_id = excluded.change_id,
			kind = excluded.kind,
			weather_type = excluded.weather_type,
			processed_at = excluded.processed_at,
			body = excluded.body`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			string(ev.Key),
			ev.Headers["change_id"],
			ev.Headers["change_kind"],
			ev.Headers["weather_type"],
			ev.Headers["processed_at"],
			string(ev.Value),
		); err != nil {
			return fmt.Errorf("upsert change %s: %w", ev.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit changes: %w", err)
	}
	return nil
}

// LatestChanges returns the newest change at every location, ordered by
// location.
func (s *Store) LatestChanges(ctx context.Context) ([]StoredChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location, change_id, kind, weather_type, processed_at, body
		FROM latest_changes ORDER BY location`)
	if err != nil {
		return nil, fmt.Errorf("query latest changes: %w", err)
	}
	defer rows.Close()

	var out []StoredChange
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest changes: %w", err)
	}
	return out, nil
}

// LatestChange returns the newest change at location.
func (s *Store) LatestChange(ctx context.Context, location string) (StoredChange, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location, change_id, kind, weather_type, processed_at, body
		FROM latest_changes WHERE location = ?`, location)
	c, err := scanChange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredChange{}, false, nil
	}
	if err != nil {
		return StoredChange{}, false, err
	}
	return c, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChange(sc scanner) (StoredChange, error) {
	var (
		c           StoredChange
		processedAt string
		body        string
	)
	if err := sc.Scan(&c.Location, &c.ChangeID, &c.Kind, &c.WeatherType, &processedAt, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredChange{}, err
		}
		return StoredChange{}, fmt.Errorf("scan change: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, processedAt); err == nil {
		c.ProcessedAt = t
	}
	c.Body = []byte(body)
	return c, nil
}
