// Package temporal maintains the metadata property graph: per-predicate
// value snapshots with validity intervals and content-hashed change
// detection, enabling point-in-time reconstruction of any model.
package temporal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Snapshot records one (model, predicate, value) observation with its
// validity interval. A nil ValidTo means the snapshot is currently open.
// Intervals are half-open: [ValidFrom, ValidTo).
type Snapshot struct {
	ModelURI    string     `json:"model_uri"`
	PropertyIRI string     `json:"property_iri"`
	Value       string     `json:"value"`
	ValueURI    string     `json:"value_uri,omitempty"`
	Hash        string     `json:"hash"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`
}

// Open reports whether the snapshot is currently valid.
func (s Snapshot) Open() bool {
	return s.ValidTo == nil
}

// CoversInstant reports whether t falls inside the validity interval.
func (s Snapshot) CoversInstant(t time.Time) bool {
	if t.Before(s.ValidFrom) {
		return false
	}
	return s.ValidTo == nil || t.Before(*s.ValidTo)
}

// HashSnapshot computes the content hash that drives change detection.
// Identical hashes never produce a new snapshot; a metadata-only change
// (method, confidence, notes) hashes differently and therefore does.
func HashSnapshot(propertyIRI, value, valueURI, method string, confidence float64, notes string) string {
	payload := strings.Join([]string{
		propertyIRI,
		value,
		valueURI,
		method,
		fmt.Sprintf("%g", confidence),
		notes,
	}, "\x1f")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
