package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zbmed-semtec/mlentory/schema"
)

// MaxThreads caps enrichment parallelism regardless of configuration,
// keeping request rates polite toward public services.
const MaxThreads = 10

// clampThreads bounds a configured thread count to [1, MaxThreads].
func clampThreads(threads int) int {
	if threads < 1 {
		return 1
	}
	if threads > MaxThreads {
		return MaxThreads
	}
	return threads
}

// fetchAll resolves ids with a bounded worker pool. Each id yields
// exactly one record: fetch's result on success, stub's on error. The
// output preserves the input order of the deduplicated ids.
func fetchAll(
	ctx context.Context,
	ids []string,
	threads int,
	fetch func(context.Context, string) (schema.Record, error),
	stub func(string, error) schema.Record,
) ([]schema.Record, error) {
	unique := dedupe(ids)
	records := make([]schema.Record, len(unique))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(clampThreads(threads))
	for i, id := range unique {
		group.Go(func() error {
			r, err := fetch(ctx, id)
			if err != nil {
				r = stub(id, err)
			}
			records[i] = r
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CountStubs reports how many records in a batch are stubs.
func CountStubs(records []schema.Record) int {
	n := 0
	for _, r := range records {
		if !r.Enriched() {
			n++
		}
	}
	return n
}
