package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapelo-labs/fishstock/internal/store"
)

// memStore is an in-memory snapshot cache for tests.
type memStore struct {
	mu    sync.Mutex
	snaps map[store.Kind]*store.Snapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[store.Kind]*store.Snapshot)}
}

func (m *memStore) SaveSnapshot(_ context.Context, kind store.Kind, payload []byte) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &store.Snapshot{ID: string(kind), Kind: kind, Payload: payload, FetchedAt: time.Now().UTC()}
	m.snaps[kind] = snap
	return snap, nil
}

func (m *memStore) LatestSnapshot(_ context.Context, kind store.Kind) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snaps[kind], nil
}

func (m *memStore) PruneSnapshots(context.Context, int) (int, error) { return 0, nil }
func (m *memStore) Migrate(context.Context) error                    { return nil }
func (m *memStore) Close() error                                     { return nil }

var _ store.Store = (*memStore)(nil)

const (
	speciesPayload     = `{"success":true,"data":[{"name":"Red Snapper","actionCount":12},{"name":"Cobia","actionCount":3}]}`
	assessmentsPayload = `{"success":true,"data":[{"species":"Red Snapper","overfished":true}]}`
)

func registryServer(t *testing.T, speciesBody, assessmentsBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/species", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speciesBody))
	})
	mux.HandleFunc("/assessments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(assessmentsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRefresh_FetchesBothConcurrently(t *testing.T) {
	srv := registryServer(t, speciesPayload, assessmentsPayload)

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        5 * time.Second,
	}, nil)

	res, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Generation)
	require.Len(t, res.Species, 2)
	assert.Equal(t, "Red Snapper", res.Species[0].Name)
	require.Len(t, res.Assessments, 1)
	assert.True(t, res.Assessments[0].Overfished)
}

func TestRefresh_GenerationIncreases(t *testing.T) {
	srv := registryServer(t, speciesPayload, assessmentsPayload)

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        5 * time.Second,
	}, nil)

	first, err := l.Refresh(context.Background())
	require.NoError(t, err)
	second, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestRefresh_SuccessFalseDegradesToEmpty(t *testing.T) {
	srv := registryServer(t, `{"success":false,"data":[{"name":"Stale"}]}`, assessmentsPayload)

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        5 * time.Second,
	}, nil)

	res, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Species)
	assert.Len(t, res.Assessments, 1)
}

func TestRefresh_SavesSnapshots(t *testing.T) {
	srv := registryServer(t, speciesPayload, assessmentsPayload)
	cache := newMemStore()

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        5 * time.Second,
	}, cache)

	_, err := l.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := cache.LatestSnapshot(context.Background(), store.KindSpecies)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, speciesPayload, string(snap.Payload))
}

func TestRefresh_FallsBackToSnapshotWhenSourceDown(t *testing.T) {
	cache := newMemStore()
	_, err := cache.SaveSnapshot(context.Background(), store.KindSpecies, []byte(speciesPayload))
	require.NoError(t, err)
	_, err = cache.SaveSnapshot(context.Background(), store.KindAssessments, []byte(assessmentsPayload))
	require.NoError(t, err)

	// Point both registries at a server that immediately went away.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        time.Second,
		MaxRetries:     1,
	}, cache)

	res, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Species, 2)
	assert.Len(t, res.Assessments, 1)
}

func TestRefresh_NoSnapshotDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	l := NewLoader(Config{
		SpeciesURL:     srv.URL + "/species",
		AssessmentsURL: srv.URL + "/assessments",
		Timeout:        time.Second,
		MaxRetries:     1,
	}, nil)

	res, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Species)
	assert.Empty(t, res.Assessments)
}
