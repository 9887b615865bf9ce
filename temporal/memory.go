package temporal

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and by dry runs
// without a backing graph database.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]*Snapshot // keyed by model URI
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]*Snapshot)}
}

// OpenSnapshots implements Store.
func (m *MemoryStore) OpenSnapshots(_ context.Context, modelURI, propertyIRI string) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Snapshot
	for _, s := range m.snapshots[modelURI] {
		if s.PropertyIRI == propertyIRI && s.Open() {
			out = append(out, *s)
		}
	}
	return out, nil
}

// CloseSnapshots implements Store.
func (m *MemoryStore) CloseSnapshots(_ context.Context, modelURI, propertyIRI string, hashes []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hashSet := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		hashSet[h] = true
	}
	for _, s := range m.snapshots[modelURI] {
		if s.PropertyIRI == propertyIRI && s.Open() && hashSet[s.Hash] {
			closed := at
			s.ValidTo = &closed
		}
	}
	return nil
}

// CreateSnapshots implements Store.
func (m *MemoryStore) CreateSnapshots(_ context.Context, snapshots []Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range snapshots {
		copied := s
		m.snapshots[s.ModelURI] = append(m.snapshots[s.ModelURI], &copied)
	}
	return nil
}

// SnapshotsForModel implements Store.
func (m *MemoryStore) SnapshotsForModel(_ context.Context, modelURI string) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Snapshot
	for _, s := range m.snapshots[modelURI] {
		out = append(out, *s)
	}
	return out, nil
}
