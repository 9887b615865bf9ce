package enrich

import (
	"fmt"
	"log/slog"
	"strings"

	iso6391 "github.com/emvi/iso-639-1"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// LanguageBuilder resolves ISO-639-1 codes to language records. The
// lookup is local; no external service is involved.
type LanguageBuilder struct {
	platform string
	logger   *slog.Logger
}

// NewLanguageBuilder creates a language record builder.
func NewLanguageBuilder(platform string, logger *slog.Logger) *LanguageBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LanguageBuilder{platform: platform, logger: logger}
}

// BuildLanguages resolves each code to a language record, stubbing
// codes outside ISO-639-1.
func (b *LanguageBuilder) BuildLanguages(codes []string) []schema.Record {
	records := make([]schema.Record, 0, len(codes))
	for _, code := range dedupe(lowercase(codes)) {
		if !iso6391.ValidCode(code) {
			b.logger.Debug("stubbing language", "code", code)
			records = append(records, schema.Stub(fair4ml.KindLanguage, b.platform,
				code, fmt.Errorf("language %q: %w", code, ErrNotFound)))
			continue
		}

		language := iso6391.FromCode(code)
		r := schema.New(fair4ml.KindLanguage, b.platform, code)
		r.Set(fair4ml.Name, language.Name, schema.Meta(schema.MethodCurated, 1.0, "iso639-1"))
		r.Set(fair4ml.AlternateName, language.NativeName, schema.Meta(schema.MethodCurated, 1.0, "iso639-1"))
		r.Set(fair4ml.TermCode, code, schema.Meta(schema.MethodCurated, 1.0, "iso639-1"))
		records = append(records, r)
	}
	return records
}

func lowercase(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
