package identify

import (
	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// NewLicenseIdentifier finds license references: tags with the license:
// prefix plus the card front matter license field.
func NewLicenseIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindLicense,
		extract: func(m huggingface.RawModel) []string {
			refs := tagValues(m.Tags, PrefixLicense)
			if m.CardData.License != "" {
				refs = append(refs, m.CardData.License)
			}
			return refs
		},
	}
}
