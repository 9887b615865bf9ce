package fair4ml

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MintIRI derives the stable MLentory IRI for an entity. The same
// (kind, platform, id) triple always mints the same IRI, across processes
// and runs; this is the primary key of every entity in both stores.
func MintIRI(kind EntityKind, platform, id string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{string(kind), platform, id}, "|")))
	return GraphNamespace + string(kind) + "/" + hex.EncodeToString(sum[:])
}

// FallbackIRI mints an IRI for an entity whose only identifiers are
// malformed. The raw identifier is hashed so the entity still loads under
// a syntactically valid subject.
func FallbackIRI(kind EntityKind, raw string) string {
	return MintIRI(kind, "unresolved", raw)
}

// IsMLentoryIRI reports whether an IRI was minted in the MLentory graph
// namespace.
func IsMLentoryIRI(iri string) bool {
	return strings.HasPrefix(iri, GraphNamespace)
}

// ShortID extracts the trailing hash of an MLentory IRI, or returns the
// input unchanged when it is not a minted IRI.
func ShortID(iri string) string {
	if !IsMLentoryIRI(iri) {
		return iri
	}
	idx := strings.LastIndex(iri, "/")
	if idx < 0 || idx == len(iri)-1 {
		return iri
	}
	return iri[idx+1:]
}

// EntityIRI reconstructs a full MLentory IRI from an entity kind and a
// short hash id. IRIs pass through unchanged.
func EntityIRI(kind EntityKind, id string) string {
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	return GraphNamespace + string(kind) + "/" + id
}
