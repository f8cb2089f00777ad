package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS registry_snapshots (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    BLOB NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_kind_fetched ON registry_snapshots(kind, fetched_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, kind Kind, payload []byte) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registry_snapshots (id, kind, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		snap.ID, string(kind), snap.Payload, snap.FetchedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert %s snapshot", kind)
	}
	return snap, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, kind Kind) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, fetched_at FROM registry_snapshots WHERE kind = ? ORDER BY fetched_at DESC LIMIT 1`,
		string(kind),
	)
	var snap Snapshot
	var k string
	if err := row.Scan(&snap.ID, &k, &snap.Payload, &snap.FetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: latest %s snapshot", kind)
	}
	snap.Kind = Kind(k)
	return &snap, nil
}

func (s *SQLiteStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	total := 0
	for _, kind := range []Kind{KindSpecies, KindAssessments} {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM registry_snapshots WHERE kind = ? AND id NOT IN (
				SELECT id FROM registry_snapshots WHERE kind = ? ORDER BY fetched_at DESC LIMIT ?
			)`, string(kind), string(kind), keep)
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: prune %s snapshots", kind)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "sqlite: prune rows affected")
		}
		total += int(n)
	}
	return total, nil
}
