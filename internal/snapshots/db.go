// Package snapshots persists fetched stats documents and update-check state.
package snapshots

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"scottish-predictor/internal/ingest"
)

const (
	keyLastChecked    = "last_checked"
	keyAppliedVersion = "applied_version"
)

// Snapshot is one stored stats document.
type Snapshot struct {
	ID        string
	Version   string
	FetchedAt time.Time
	File      ingest.StatsFile
}

// Info is snapshot metadata without the payload.
type Info struct {
	ID        string
	Version   string
	FetchedAt time.Time
	Leagues   int
}

// DB handles snapshot storage
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the snapshot database at dbPath.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		league_count INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_version ON snapshots(version);

	CREATE TABLE IF NOT EXISTS update_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveSnapshot stores f and returns its generated ID.
func (d *DB) SaveSnapshot(ctx context.Context, f ingest.StatsFile, fetchedAt time.Time) (string, error) {
	var payload bytes.Buffer
	if err := ingest.EncodeStatsFile(&payload, f); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, version, fetched_at, league_count, payload)
		VALUES (?, ?, ?, ?, ?)
	`, id, f.Version, formatTime(fetchedAt), len(f.Leagues), payload.String())
	if err != nil {
		return "", fmt.Errorf("inserting snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recently fetched snapshot, or nil if none
// has been stored.
func (d *DB) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, version, fetched_at, payload
		FROM snapshots
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`)

	var s Snapshot
	var fetchedAt, payload string
	err := row.Scan(&s.ID, &s.Version, &fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	if s.FetchedAt, err = parseTime(fetchedAt); err != nil {
		return nil, err
	}
	if s.File, err = ingest.DecodeStatsFile(bytes.NewBufferString(payload)); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.ID, err)
	}
	return &s, nil
}

// Snapshots lists up to limit snapshots, newest first.
func (d *DB) Snapshots(ctx context.Context, limit int) ([]Info, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, version, fetched_at, league_count
		FROM snapshots
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var fetchedAt string
		if err := rows.Scan(&info.ID, &info.Version, &fetchedAt, &info.Leagues); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if info.FetchedAt, err = parseTime(fetchedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// SetLastChecked records when the update check last ran.
func (d *DB) SetLastChecked(ctx context.Context, t time.Time) error {
	return d.setState(ctx, keyLastChecked, formatTime(t))
}

// LastChecked returns when the update check last ran. ok is false if it
// never has.
func (d *DB) LastChecked(ctx context.Context) (t time.Time, ok bool, err error) {
	v, ok, err := d.state(ctx, keyLastChecked)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err = parseTime(v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// SetAppliedVersion records the stats version currently serving predictions.
func (d *DB) SetAppliedVersion(ctx context.Context, version string) error {
	return d.setState(ctx, keyAppliedVersion, version)
}

// AppliedVersion returns the last applied stats version, or "" if none.
func (d *DB) AppliedVersion(ctx context.Context) (string, error) {
	v, _, err := d.state(ctx, keyAppliedVersion)
	return v, err
}

func (d *DB) setState(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO update_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (d *DB) state(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM update_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
