package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool pgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS registry_snapshots (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    BYTEA NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_kind_fetched ON registry_snapshots(kind, fetched_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, kind Kind, payload []byte) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO registry_snapshots (id, kind, payload, fetched_at) VALUES ($1, $2, $3, $4)`,
		snap.ID, string(kind), snap.Payload, snap.FetchedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert %s snapshot", kind)
	}
	return snap, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, kind Kind) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, payload, fetched_at FROM registry_snapshots WHERE kind = $1 ORDER BY fetched_at DESC LIMIT 1`,
		string(kind),
	)
	var snap Snapshot
	var k string
	if err := row.Scan(&snap.ID, &k, &snap.Payload, &snap.FetchedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest %s snapshot", kind)
	}
	snap.Kind = Kind(k)
	return &snap, nil
}

func (s *PostgresStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM registry_snapshots d USING (
			SELECT id, row_number() OVER (PARTITION BY kind ORDER BY fetched_at DESC) AS rn
			FROM registry_snapshots
		) ranked
		WHERE d.id = ranked.id AND ranked.rn > $1`, keep)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune snapshots")
	}
	return int(tag.RowsAffected()), nil
}

// Ensure both backends satisfy Store.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
