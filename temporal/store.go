package temporal

import (
	"context"
	"time"
)

// Store is the snapshot persistence surface. The writer performs
// read-modify-write over it; implementations must serialize concurrent
// writers per model (the Neo4j store relies on the unique constraints on
// ModelMeta.uri and Property.iri plus per-node locking).
type Store interface {
	// OpenSnapshots returns the open snapshots for one (model, property).
	OpenSnapshots(ctx context.Context, modelURI, propertyIRI string) ([]Snapshot, error)

	// CloseSnapshots sets valid_to on the open snapshots of
	// (model, property) whose hash is in hashes.
	CloseSnapshots(ctx context.Context, modelURI, propertyIRI string, hashes []string, at time.Time) error

	// CreateSnapshots inserts new open snapshots, all in one
	// transaction per model.
	CreateSnapshots(ctx context.Context, snapshots []Snapshot) error

	// SnapshotsForModel returns every snapshot of a model, open and
	// closed.
	SnapshotsForModel(ctx context.Context, modelURI string) ([]Snapshot, error)
}
