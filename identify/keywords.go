package identify

import (
	"strings"

	iso6391 "github.com/emvi/iso-639-1"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// maxKeywordTokens is the length filter: longer tags are prose, not
// terms.
const maxKeywordTokens = 4

// NewKeywordIdentifier finds free keyword references: every tag not
// claimed by a typed identifier, plus the pipeline tag and library
// name.
func NewKeywordIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindKeyword,
		extract: func(m huggingface.RawModel) []string {
			var refs []string
			for _, tag := range m.Tags {
				if keyword := asKeyword(tag); keyword != "" {
					refs = append(refs, keyword)
				}
			}
			if m.PipelineTag != "" {
				refs = append(refs, m.PipelineTag)
			}
			if m.LibraryName != "" {
				refs = append(refs, m.LibraryName)
			}
			return refs
		},
	}
}

// asKeyword returns the keyword form of a tag, "" when the tag is a
// typed reference, a language code or too long.
func asKeyword(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || hasReservedPrefix(tag) {
		return ""
	}
	if iso6391.ValidCode(strings.ToLower(tag)) {
		return ""
	}
	if len(strings.Fields(tag)) > maxKeywordTokens {
		return ""
	}
	return tag
}
