package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_SaveSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	payload := []byte(`{"success":true,"data":[]}`)
	mock.ExpectExec(`INSERT INTO registry_snapshots`).
		WithArgs(pgxmock.AnyArg(), "species", payload, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	snap, err := s.SaveSnapshot(context.Background(), KindSpecies, payload)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, KindSpecies, snap.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	fetched := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, kind, payload, fetched_at FROM registry_snapshots WHERE kind = \$1`).
		WithArgs("assessments").
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "payload", "fetched_at"}).
			AddRow("snap-1", "assessments", []byte(`{}`), fetched))

	snap, err := s.LatestSnapshot(context.Background(), KindAssessments)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, KindAssessments, snap.Kind)
	assert.Equal(t, fetched, snap.FetchedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestSnapshot_NoneIsNil(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, kind, payload, fetched_at FROM registry_snapshots`).
		WithArgs("species").
		WillReturnError(pgx.ErrNoRows)

	snap, err := s.LatestSnapshot(context.Background(), KindSpecies)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PruneSnapshots(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM registry_snapshots`).
		WithArgs(2).
		WillReturnResult(pgxmock.NewResult("DELETE", 6))

	n, err := s.PruneSnapshots(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS registry_snapshots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
