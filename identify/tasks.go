package identify

import (
	"strings"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// NewTaskIdentifier finds ML task references: the pipeline tag plus any
// tag that resolves through the task catalog. The catalog maps task
// aliases (lowercased) to canonical task names; a nil catalog keeps
// only the pipeline tag.
func NewTaskIdentifier(catalog map[string]string) Identifier {
	return kindIdentifier{
		kind: fair4ml.KindTask,
		extract: func(m huggingface.RawModel) []string {
			var refs []string
			if m.PipelineTag != "" {
				refs = append(refs, canonicalTask(catalog, m.PipelineTag))
			}
			for _, tag := range m.Tags {
				if canonical, ok := lookupTask(catalog, tag); ok {
					refs = append(refs, canonical)
				}
			}
			return refs
		},
	}
}

func canonicalTask(catalog map[string]string, name string) string {
	if canonical, ok := lookupTask(catalog, name); ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func lookupTask(catalog map[string]string, name string) (string, bool) {
	canonical, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}
