package temporal

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/zbmed-semtec/mlentory/rdf"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// WriteStats summarizes one metadata write.
type WriteStats struct {
	Models           int `json:"models"`
	SnapshotsCreated int `json:"snapshots_created"`
	SnapshotsClosed  int `json:"snapshots_closed"`
	SnapshotsKept    int `json:"snapshots_kept"`
}

func (w *WriteStats) add(other WriteStats) {
	w.Models += other.Models
	w.SnapshotsCreated += other.SnapshotsCreated
	w.SnapshotsClosed += other.SnapshotsClosed
	w.SnapshotsKept += other.SnapshotsKept
}

// Service writes and reconstructs the temporal metadata subgraph.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a temporal metadata service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// WriteMetadata records one model's predicate values at runTS. Unchanged
// values keep their open snapshot, disappeared values are closed at
// runTS, and new values (or values whose extraction metadata changed)
// open a new snapshot.
func (s *Service) WriteMetadata(ctx context.Context, model schema.Record, runTS time.Time) (WriteStats, error) {
	stats := WriteStats{Models: 1}
	modelURI := model.MLentoryIRI()
	if modelURI == "" {
		modelURI = rdf.SubjectIRI(fair4ml.KindMLModel, model)
	}
	metadata := model.Metadata()

	candidatesByProperty := make(map[string][]Snapshot)
	for _, predicate := range model.Predicates() {
		if predicate == schema.EnrichedKey || predicate == fair4ml.MetricsKey {
			continue
		}
		meta := metadata[predicate]
		for _, value := range model.Strings(predicate) {
			if value == "" {
				continue
			}
			valueURI := ""
			if rdf.IsAbsoluteIRI(value) {
				valueURI = value
			}
			candidatesByProperty[predicate] = append(candidatesByProperty[predicate], Snapshot{
				ModelURI:    modelURI,
				PropertyIRI: predicate,
				Value:       value,
				ValueURI:    valueURI,
				Hash:        HashSnapshot(predicate, value, valueURI, meta.Method, meta.Confidence, meta.Notes),
				ValidFrom:   runTS,
			})
		}
	}

	// Properties the model no longer carries still need their open
	// snapshots closed.
	properties := make(map[string]bool, len(candidatesByProperty))
	for p := range candidatesByProperty {
		properties[p] = true
	}
	existing, err := s.store.SnapshotsForModel(ctx, modelURI)
	if err != nil {
		return stats, err
	}
	for _, snap := range existing {
		if snap.Open() {
			properties[snap.PropertyIRI] = true
		}
	}

	ordered := make([]string, 0, len(properties))
	for p := range properties {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var toCreate []Snapshot
	for _, property := range ordered {
		candidates := candidatesByProperty[property]
		open, err := s.store.OpenSnapshots(ctx, modelURI, property)
		if err != nil {
			return stats, err
		}

		candidateHashes := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			candidateHashes[c.Hash] = true
		}
		openHashes := make(map[string]bool, len(open))
		var stale []string
		for _, o := range open {
			openHashes[o.Hash] = true
			if !candidateHashes[o.Hash] {
				stale = append(stale, o.Hash)
			} else {
				stats.SnapshotsKept++
			}
		}

		if len(stale) > 0 {
			if err := s.store.CloseSnapshots(ctx, modelURI, property, stale, runTS); err != nil {
				return stats, err
			}
			stats.SnapshotsClosed += len(stale)
		}

		added := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			if !openHashes[c.Hash] && !added[c.Hash] {
				added[c.Hash] = true
				toCreate = append(toCreate, c)
			}
		}
	}

	if len(toCreate) > 0 {
		if err := s.store.CreateSnapshots(ctx, toCreate); err != nil {
			return stats, err
		}
		stats.SnapshotsCreated = len(toCreate)
	}

	return stats, nil
}

// WriteMetadataBatch writes many models at one run timestamp, grouped
// per model URI while preserving single-model semantics.
func (s *Service) WriteMetadataBatch(ctx context.Context, models []schema.Record, runTS time.Time) (WriteStats, error) {
	var stats WriteStats
	for _, model := range models {
		modelStats, err := s.WriteMetadata(ctx, model, runTS)
		if err != nil {
			return stats, err
		}
		stats.add(modelStats)
	}
	s.logger.Info("Wrote temporal metadata",
		slog.Int("models", stats.Models),
		slog.Int("created", stats.SnapshotsCreated),
		slog.Int("closed", stats.SnapshotsClosed))
	return stats, nil
}

// Reconstruct returns the model's predicate values as they were valid at
// t, grouped by predicate. Unknown models and instants before the first
// snapshot yield an empty map.
func (s *Service) Reconstruct(ctx context.Context, modelURI string, t time.Time) (map[string][]string, error) {
	snapshots, err := s.store.SnapshotsForModel(ctx, modelURI)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, snap := range snapshots {
		if snap.CoversInstant(t) {
			result[snap.PropertyIRI] = append(result[snap.PropertyIRI], snap.Value)
		}
	}
	for _, values := range result {
		sort.Strings(values)
	}
	return result, nil
}
