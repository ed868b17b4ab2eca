// Package store persists fetch snapshots in SQLite, one row per fetch, with
// a change summary against the previous snapshot of the same URL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/model"
)

// ErrNotFound is returned when a URL has no stored snapshots.
var ErrNotFound = errors.New("no snapshot for url")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	url           TEXT NOT NULL,
	status_code   INTEGER NOT NULL,
	headers_json  TEXT NOT NULL,
	body          BLOB,
	fetched_at    TIMESTAMP NOT NULL,
	added_chars   INTEGER NOT NULL DEFAULT 0,
	removed_chars INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_snapshots_url ON snapshots(url, id);
`

// Config for the snapshot store.
type Config struct {
	// Path of the sqlite database file. ":memory:" works for tests.
	Path string

	// RedactSensitiveHeaders strips credential-bearing headers before
	// persisting.
	RedactSensitiveHeaders bool
}

var sensitiveHeaders = []string{"authorization", "cookie", "set-cookie", "proxy-authorization"}

type Store struct {
	db     *sql.DB
	cfg    Config
	logger interfaces.Logger
}

// Open opens (creating if needed) the snapshot database.
func Open(cfg Config, logger interfaces.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: empty database path")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With(interfaces.Field{Key: "component", Value: "store"}),
	}, nil
}

// Save persists a snapshot and returns its row id. The change summary is
// computed against the latest stored snapshot of the same URL.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) (int64, error) {
	if snap == nil {
		return 0, fmt.Errorf("nil snapshot")
	}
	if snap.URL == "" {
		return 0, fmt.Errorf("snapshot has no url")
	}

	prev, err := s.Latest(ctx, snap.URL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if prev != nil {
		snap.AddedChars, snap.RemovedChars = diffStats(prev.Body, snap.Body)
	}

	headers := snap.Headers
	if s.cfg.RedactSensitiveHeaders {
		headers = redact(headers)
	}
	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return 0, fmt.Errorf("marshaling headers: %w", err)
	}

	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (url, status_code, headers_json, body, fetched_at, added_chars, removed_chars)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.URL, snap.StatusCode, string(headersJSON), snap.Body, fetchedAt,
		snap.AddedChars, snap.RemovedChars)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	snap.ID = id

	s.logger.Debug("saved snapshot",
		interfaces.Field{Key: "url", Value: snap.URL},
		interfaces.Field{Key: "id", Value: id},
		interfaces.Field{Key: "added", Value: snap.AddedChars},
		interfaces.Field{Key: "removed", Value: snap.RemovedChars})
	return id, nil
}

// SaveBatch persists snapshots in order. Nil entries are skipped.
func (s *Store) SaveBatch(ctx context.Context, snaps []*model.Snapshot) (int, error) {
	saved := 0
	for _, snap := range snaps {
		if snap == nil {
			continue
		}
		if _, err := s.Save(ctx, snap); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// Latest returns the most recent snapshot for a URL, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, url string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, status_code, headers_json, body, fetched_at, added_chars, removed_chars
		 FROM snapshots WHERE url = ? ORDER BY id DESC LIMIT 1`, url)
	return scanSnapshot(row)
}

// History returns up to limit snapshots for a URL, newest first.
func (s *Store) History(ctx context.Context, url string, limit int) ([]*model.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, status_code, headers_json, body, fetched_at, added_chars, removed_chars
		 FROM snapshots WHERE url = ? ORDER BY id DESC LIMIT ?`, url, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []*model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// URLs lists the distinct URLs with at least one snapshot.
func (s *Store) URLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT url FROM snapshots ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("querying urls: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*model.Snapshot, error) {
	var snap model.Snapshot
	var headersJSON string
	err := row.Scan(&snap.ID, &snap.URL, &snap.StatusCode, &headersJSON,
		&snap.Body, &snap.FetchedAt, &snap.AddedChars, &snap.RemovedChars)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(headersJSON), &snap.Headers); err != nil {
		return nil, fmt.Errorf("unmarshaling headers: %w", err)
	}
	return &snap, nil
}

// diffStats summarizes how much text was added and removed between bodies.
func diffStats(old, new []byte) (added, removed int) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(old), string(new), false)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
		}
	}
	return added, removed
}

func redact(headers map[string][]string) map[string][]string {
	if headers == nil {
		return nil
	}
	out := make(map[string][]string, len(headers))
	for k, v := range headers {
		lower := strings.ToLower(k)
		redacted := false
		for _, sensitive := range sensitiveHeaders {
			if lower == sensitive {
				redacted = true
				break
			}
		}
		if redacted {
			out[k] = []string{"[REDACTED]"}
		} else {
			out[k] = v
		}
	}
	return out
}
