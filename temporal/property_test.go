package temporal_test

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/temporal"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// TestSnapshotInvariantsUnderRandomWriteSequences drives the writer with
// random value sequences and checks the graph invariants after every
// write: at most one open snapshot per (model, property, value), and a
// repeated write never creates snapshots.
func TestSnapshotInvariantsUnderRandomWriteSequences(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	nameGen := gen.OneConstOf("alpha", "beta", "gamma", "delta")
	seqGen := gen.SliceOfN(6, nameGen)

	properties.Property("one open snapshot per value", prop.ForAll(
		func(names []string) bool {
			store := temporal.NewMemoryStore()
			svc := temporal.NewService(store, nil)
			ctx := context.Background()

			ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
			var uri string
			for _, name := range names {
				m := model(name)
				uri = m.MLentoryIRI()
				if _, err := svc.WriteMetadata(ctx, m, ts); err != nil {
					return false
				}
				ts = ts.Add(time.Hour)
			}

			snapshots, err := store.SnapshotsForModel(ctx, uri)
			if err != nil {
				return false
			}
			open := map[string]int{}
			for _, s := range snapshots {
				if s.Open() {
					open[s.PropertyIRI+"|"+s.Value]++
					if open[s.PropertyIRI+"|"+s.Value] > 1 {
						return false
					}
				}
			}
			return true
		},
		seqGen,
	))

	properties.Property("re-write of the final state is a no-op", prop.ForAll(
		func(names []string) bool {
			store := temporal.NewMemoryStore()
			svc := temporal.NewService(store, nil)
			ctx := context.Background()

			ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
			var last schema.Record
			for _, name := range names {
				last = model(name)
				if _, err := svc.WriteMetadata(ctx, last, ts); err != nil {
					return false
				}
				ts = ts.Add(time.Hour)
			}
			if last == nil {
				return true
			}
			stats, err := svc.WriteMetadata(ctx, last, ts)
			return err == nil && stats.SnapshotsCreated == 0 && stats.SnapshotsClosed == 0
		},
		seqGen,
	))

	properties.Property("reconstruction matches interval membership", prop.ForAll(
		func(names []string) bool {
			store := temporal.NewMemoryStore()
			svc := temporal.NewService(store, nil)
			ctx := context.Background()

			base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
			ts := base
			var uri string
			for _, name := range names {
				m := model(name)
				uri = m.MLentoryIRI()
				if _, err := svc.WriteMetadata(ctx, m, ts); err != nil {
					return false
				}
				ts = ts.Add(time.Hour)
			}
			if uri == "" {
				return true
			}

			snapshots, err := store.SnapshotsForModel(ctx, uri)
			if err != nil {
				return false
			}
			for i := range names {
				at := base.Add(time.Duration(i)*time.Hour + 30*time.Minute)
				got, err := svc.Reconstruct(ctx, uri, at)
				if err != nil {
					return false
				}
				want := map[string]int{}
				for _, s := range snapshots {
					if s.CoversInstant(at) {
						want[s.PropertyIRI]++
					}
				}
				total := 0
				for _, values := range got {
					total += len(values)
				}
				expected := 0
				for _, n := range want {
					expected += n
				}
				if total != expected {
					return false
				}
				if len(got[fair4ml.Name]) != 1 || got[fair4ml.Name][0] != names[i] {
					return false
				}
			}
			return true
		},
		seqGen,
	))

	properties.TestingRun(t)
}
