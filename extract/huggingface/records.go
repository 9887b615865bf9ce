// Package huggingface extracts primary model records and referenced
// entity metadata from the HuggingFace hub.
package huggingface

import "strings"

// Platform is the platform name used in run folders and minted IRIs.
const Platform = "huggingface"

// CardData is the parsed YAML front matter of a model card as the hub
// API returns it.
type CardData struct {
	License   string   `json:"license,omitempty"`
	Datasets  []string `json:"datasets,omitempty"`
	Languages []string `json:"language,omitempty"`
	BaseModel []string `json:"base_model,omitempty"`
}

// RawModel is the raw primary record of one hub model. Stub records
// carry Stub=true and an Error so downstream linkage never loses an id.
type RawModel struct {
	ID           string   `json:"modelId"`
	Author       string   `json:"author,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	LastModified string   `json:"lastModified,omitempty"`
	Downloads    int      `json:"downloads,omitempty"`
	Likes        int      `json:"likes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	PipelineTag  string   `json:"pipeline_tag,omitempty"`
	LibraryName  string   `json:"library_name,omitempty"`
	CardData     CardData `json:"cardData,omitempty"`
	Card         string   `json:"card,omitempty"`
	Gated        bool     `json:"gated,omitempty"`

	Stub  bool   `json:"stub,omitempty"`
	Error string `json:"error,omitempty"`
}

// URL returns the hub page of the model.
func (m RawModel) URL() string {
	return "https://huggingface.co/" + m.ID
}

// minCardLength is the information threshold: models with shorter cards
// carry too little metadata to be worth normalizing.
const minCardLength = 100

// Informative reports whether a model clears the information threshold:
// a usable card, a task tag, and non-default content.
func (m RawModel) Informative() bool {
	if m.Stub {
		return true
	}
	if len(m.Card) < minCardLength {
		return false
	}
	if m.PipelineTag == "" {
		return false
	}
	return !isDefaultCard(m.Card)
}

// isDefaultCard detects the untouched autogenerated card template.
func isDefaultCard(card string) bool {
	const marker = "# model card for model id"
	return len(card) < 2*minCardLength && strings.Contains(strings.ToLower(card), marker)
}
