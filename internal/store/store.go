// Package store caches the last-good raw registry payloads so the dashboard
// keeps serving when a source is down. Only source bytes are stored; match
// results are recomputed on every pass and never persisted.
package store

import (
	"context"
	"time"
)

// Kind names one of the two cached registries.
type Kind string

const (
	KindSpecies     Kind = "species"
	KindAssessments Kind = "assessments"
)

// Snapshot is one cached registry payload.
type Snapshot struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Payload   []byte    `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store defines the snapshot cache interface.
type Store interface {
	// SaveSnapshot records a freshly fetched payload for kind.
	SaveSnapshot(ctx context.Context, kind Kind, payload []byte) (*Snapshot, error)

	// LatestSnapshot returns the newest snapshot for kind, or nil when none
	// has been recorded.
	LatestSnapshot(ctx context.Context, kind Kind) (*Snapshot, error)

	// PruneSnapshots deletes all but the newest keep snapshots per kind,
	// returning the number removed.
	PruneSnapshots(ctx context.Context, keep int) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
