package identify

import (
	"strings"

	iso6391 "github.com/emvi/iso-639-1"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// NewLanguageIdentifier finds natural-language references: tags and
// card front matter values that validate as ISO-639-1 codes.
func NewLanguageIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindLanguage,
		extract: func(m huggingface.RawModel) []string {
			var refs []string
			for _, candidate := range append(m.CardData.Languages, m.Tags...) {
				code := strings.ToLower(strings.TrimSpace(candidate))
				if iso6391.ValidCode(code) {
					refs = append(refs, code)
				}
			}
			return refs
		},
	}
}
