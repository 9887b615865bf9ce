package enrich

import (
	"log/slog"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// TaskBuilder resolves canonical task names to task records. Definitions
// come from the curated catalog; names without an entry still produce a
// record so linkage targets always exist.
type TaskBuilder struct {
	catalog  *Catalog
	platform string
	logger   *slog.Logger
}

// NewTaskBuilder creates a task record builder. catalog may be nil.
func NewTaskBuilder(catalog *Catalog, platform string, logger *slog.Logger) *TaskBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskBuilder{catalog: catalog, platform: platform, logger: logger}
}

// BuildTasks builds one record per task name.
func (b *TaskBuilder) BuildTasks(names []string) []schema.Record {
	records := make([]schema.Record, 0, len(names))
	for _, name := range dedupe(names) {
		r := schema.New(fair4ml.KindTask, b.platform, name)
		if entry, ok := b.catalog.lookupSafe(name); ok {
			r.Set(fair4ml.Name, entry.Term, schema.Meta(schema.MethodCurated, 1.0, "task"))
			r.Set(fair4ml.Description, entry.Definition, schema.Meta(schema.MethodCurated, 1.0, "definition"))
		} else {
			b.logger.Debug("task missing from catalog", "task", name)
			r.Set(fair4ml.Name, name, schema.Meta(schema.MethodParsed, 0.8, "pipeline_tag"))
		}
		records = append(records, r)
	}
	return records
}
