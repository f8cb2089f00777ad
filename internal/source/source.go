// Package source retrieves the species and assessment registries. The two
// collections are fetched concurrently and handed over together; each refresh
// carries a generation stamp so a superseded response can be recognized and
// discarded instead of clobbering fresher data.
package source

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sapelo-labs/fishstock/internal/fetcher"
	"github.com/sapelo-labs/fishstock/internal/model"
	"github.com/sapelo-labs/fishstock/internal/store"
)

// Config names the two registry endpoints and how to reach them.
type Config struct {
	SpeciesURL     string
	AssessmentsURL string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
}

// Result is one joined refresh of both registries.
type Result struct {
	Generation  uint64
	Species     []model.SpeciesRecord
	Assessments []model.AssessmentRecord
	FetchedAt   time.Time
}

// Loader fetches both registries. An optional snapshot store caches the raw
// payload of every good fetch and backs a degraded mode: when a source is
// unavailable the last-good snapshot is served instead of failing the
// refresh. Only raw source bytes are ever cached, never match results.
type Loader struct {
	cfg   Config
	cache store.Store
	gen   atomic.Uint64
}

// NewLoader creates a Loader. cache may be nil, which disables snapshots.
func NewLoader(cfg Config, cache store.Store) *Loader {
	return &Loader{cfg: cfg, cache: cache}
}

// Refresh fetches both registries concurrently and returns them with a fresh
// generation stamp once both have resolved. A failed or success=false source
// degrades to its cached snapshot, or to an empty collection when no snapshot
// exists; Refresh only fails on context cancellation.
func (l *Loader) Refresh(ctx context.Context) (*Result, error) {
	gen := l.gen.Add(1)
	res := &Result{Generation: gen, FetchedAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Species = fetchCollection[model.SpeciesRecord](gctx, l, l.cfg.SpeciesURL, store.KindSpecies)
		return gctx.Err()
	})
	g.Go(func() error {
		res.Assessments = fetchCollection[model.AssessmentRecord](gctx, l, l.cfg.AssessmentsURL, store.KindAssessments)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "source: refresh cancelled")
	}

	zap.L().Info("registries refreshed",
		zap.Uint64("generation", gen),
		zap.Int("species", len(res.Species)),
		zap.Int("assessments", len(res.Assessments)),
	)
	return res, nil
}

// fetchCollection downloads and decodes one registry, falling back to the
// cached snapshot on any failure. It never returns an error: worst case is an
// empty collection, which the core treats as a valid (all-unknown) input.
func fetchCollection[T any](ctx context.Context, l *Loader, url string, kind store.Kind) []T {
	log := zap.L().With(zap.String("registry", string(kind)), zap.String("url", url))

	payload, err := l.download(ctx, url)
	if err != nil {
		log.Warn("registry fetch failed, falling back to snapshot", zap.Error(err))
		return cachedCollection[T](ctx, l, kind)
	}

	items, ok, err := fetcher.DecodeEnvelope[T](bytes.NewReader(payload))
	if err != nil {
		log.Warn("registry payload malformed, falling back to snapshot", zap.Error(err))
		return cachedCollection[T](ctx, l, kind)
	}
	if !ok {
		log.Warn("registry reported success=false, falling back to snapshot")
		return cachedCollection[T](ctx, l, kind)
	}

	l.snapshot(ctx, kind, payload)
	return items
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	f, err := fetcher.ForURL(url, fetcher.Options{
		UserAgent:  l.cfg.UserAgent,
		Timeout:    l.cfg.Timeout,
		MaxRetries: l.cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "source: read body")
	}
	return data, nil
}

// cachedCollection decodes the last-good snapshot for kind, or returns an
// empty collection when no usable snapshot exists.
func cachedCollection[T any](ctx context.Context, l *Loader, kind store.Kind) []T {
	if l.cache == nil {
		return nil
	}
	snap, err := l.cache.LatestSnapshot(ctx, kind)
	if err != nil {
		zap.L().Warn("snapshot lookup failed", zap.String("registry", string(kind)), zap.Error(err))
		return nil
	}
	if snap == nil {
		return nil
	}
	items, ok, err := fetcher.DecodeEnvelope[T](bytes.NewReader(snap.Payload))
	if err != nil || !ok {
		zap.L().Warn("cached snapshot unusable", zap.String("registry", string(kind)))
		return nil
	}
	zap.L().Info("serving cached registry snapshot",
		zap.String("registry", string(kind)),
		zap.Time("fetched_at", snap.FetchedAt),
	)
	return items
}

// snapshot caches a good payload; failures are logged, never propagated.
func (l *Loader) snapshot(ctx context.Context, kind store.Kind, payload []byte) {
	if l.cache == nil {
		return
	}
	if _, err := l.cache.SaveSnapshot(ctx, kind, payload); err != nil {
		zap.L().Warn("snapshot save failed", zap.String("registry", string(kind)), zap.Error(err))
	}
}
