package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/match"
	"github.com/sapelo-labs/fishstock/internal/reconcile"
	"github.com/sapelo-labs/fishstock/internal/source"
	"github.com/sapelo-labs/fishstock/internal/store"
	"github.com/sapelo-labs/fishstock/internal/synonym"
)

// env bundles the wired components shared by the commands.
type env struct {
	Matcher *match.Matcher
	Engine  *reconcile.Engine
	Loader  *source.Loader
	Cache   store.Store
}

// initEngine wires the synonym table, matcher, snapshot cache, and loader
// from the loaded configuration.
func initEngine(ctx context.Context) (*env, error) {
	table, err := synonym.Load(cfg.Synonyms.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load synonym table")
	}

	cache, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DatabaseURL)
	if err != nil {
		// A broken cache degrades the service, it does not stop it: the
		// loader works without snapshots.
		zap.L().Warn("snapshot store unavailable, continuing without cache", zap.Error(err))
		cache = nil
	}

	matcher := match.New(table)
	loader := source.NewLoader(source.Config{
		SpeciesURL:     cfg.Sources.SpeciesURL,
		AssessmentsURL: cfg.Sources.AssessmentsURL,
		UserAgent:      cfg.Sources.UserAgent,
		Timeout:        cfg.Sources.Timeout(),
		MaxRetries:     cfg.Sources.MaxRetries,
	}, cache)

	return &env{
		Matcher: matcher,
		Engine:  reconcile.NewEngine(matcher),
		Loader:  loader,
		Cache:   cache,
	}, nil
}

// refresh fetches both registries and applies the result to the engine.
func (e *env) refresh(ctx context.Context) error {
	res, err := e.Loader.Refresh(ctx)
	if err != nil {
		return err
	}
	e.Engine.Apply(res.Generation, res.Species, res.Assessments)
	return nil
}

// Close releases the snapshot cache.
func (e *env) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}
