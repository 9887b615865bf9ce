package identify

import (
	"regexp"

	"github.com/zbmed-semtec/mlentory/extract/huggingface"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// arxivIDRe matches modern arXiv identifiers, optionally versioned.
var arxivIDRe = regexp.MustCompile(`\b(\d{4}\.\d{4,5})(v\d+)?\b`)

// arxivMentionRe finds arXiv ids mentioned in card prose, anchored to
// an "arxiv" context so stray number pairs are not misread as papers.
var arxivMentionRe = regexp.MustCompile(`(?i)arxiv(?:\.org/(?:abs|pdf)/|[:\s])\s*(\d{4}\.\d{4,5})(?:v\d+)?`)

// NewArticleIdentifier finds referenced publications: tags with the
// arxiv: prefix plus arXiv ids mentioned in the model card.
func NewArticleIdentifier() Identifier {
	return kindIdentifier{
		kind: fair4ml.KindArticle,
		extract: func(m huggingface.RawModel) []string {
			var refs []string
			for _, v := range tagValues(m.Tags, PrefixArxiv) {
				if id := normalizeArxivID(v); id != "" {
					refs = append(refs, id)
				}
			}
			for _, match := range arxivMentionRe.FindAllStringSubmatch(m.Card, -1) {
				refs = append(refs, match[1])
			}
			return refs
		},
	}
}

// normalizeArxivID strips the version suffix from an arXiv id, "" when
// the value is not an arXiv id at all.
func normalizeArxivID(v string) string {
	match := arxivIDRe.FindStringSubmatch(v)
	if match == nil {
		return ""
	}
	return match[1]
}
