package identify

import (
	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// NewDatasetIdentifier finds training-dataset references: tags with the
// dataset: prefix plus the card front matter datasets field.
func NewDatasetIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindDataset,
		extract: func(m huggingface.RawModel) []string {
			refs := tagValues(m.Tags, PrefixDataset)
			refs = append(refs, m.CardData.Datasets...)
			return refs
		},
	}
}
