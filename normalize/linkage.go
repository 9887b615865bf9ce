package normalize

import (
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// Linkage carries the per-record entity references of one platform
// batch, keyed by raw model id. Values are raw source-side references;
// Merge mints their IRIs.
type Linkage struct {
	Datasets   map[string][]string
	Articles   map[string][]string
	BaseModels map[string][]string
	Keywords   map[string][]string
	Licenses   map[string][]string
	Languages  map[string][]string
	Tasks      map[string][]string
}

// Merge attaches the linkage references of a model to its record. The
// hub does not distinguish training from evaluation data, so dataset
// references populate all four dataset predicates. License is
// single-valued, first reference wins.
func Merge(r schema.Record, platform, modelID string, linkage Linkage) schema.Record {
	setLinks := func(predicate string, kind fair4ml.EntityKind, refs []string) {
		if len(refs) == 0 {
			return
		}
		iris := make([]string, 0, len(refs))
		for _, ref := range refs {
			iris = append(iris, fair4ml.MintIRI(kind, platform, ref))
		}
		r.Set(predicate, iris, schema.Meta(schema.MethodLinked, 1.0, predicate))
	}

	datasets := linkage.Datasets[modelID]
	setLinks(fair4ml.TrainedOn, fair4ml.KindDataset, datasets)
	setLinks(fair4ml.TestedOn, fair4ml.KindDataset, datasets)
	setLinks(fair4ml.ValidatedOn, fair4ml.KindDataset, datasets)
	setLinks(fair4ml.EvaluatedOn, fair4ml.KindDataset, datasets)

	setLinks(fair4ml.ReferencePublication, fair4ml.KindArticle, linkage.Articles[modelID])
	setLinks(fair4ml.FineTunedFrom, fair4ml.KindMLModel, linkage.BaseModels[modelID])
	setLinks(fair4ml.Keywords, fair4ml.KindKeyword, linkage.Keywords[modelID])
	setLinks(fair4ml.InLanguage, fair4ml.KindLanguage, linkage.Languages[modelID])
	setLinks(fair4ml.MLTask, fair4ml.KindTask, linkage.Tasks[modelID])

	if licenses := linkage.Licenses[modelID]; len(licenses) > 0 {
		r.Set(fair4ml.License, fair4ml.MintIRI(fair4ml.KindLicense, platform, licenses[0]),
			schema.Meta(schema.MethodLinked, 1.0, fair4ml.License))
	}
	return r
}

// MergeAll applies Merge across a mapped batch. modelID returns the raw
// id of each record's source, matching the linkage keys.
func MergeAll(records []schema.Record, platform string, ids []string, linkage Linkage) []schema.Record {
	for i, r := range records {
		if i < len(ids) {
			Merge(r, platform, ids[i], linkage)
		}
	}
	return records
}
