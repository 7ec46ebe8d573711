package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

var _ service.SnapshotRepository = (*SnapshotStore)(nil)

// SnapshotStore keeps snapshots in memory.
//
// Metadata and bytes live in separate maps but are only touched together
// under mu, so no reader sees one without the other.
type SnapshotStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*domain.Snapshot
	blobs   map[string][]byte
	bytes   int64
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		records: make(map[string]*domain.Snapshot),
		blobs:   make(map[string][]byte),
	}
}

// Put stores or replaces a snapshot. A replaced snapshot keeps its place.
func (s *SnapshotStore) Put(_ context.Context, snapshot *domain.Snapshot, data []byte) error {
	if snapshot == nil || snapshot.Slug == "" {
		return domain.ErrBadRequest.WithDetails("snapshot slug is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.blobs[snapshot.Slug]; ok {
		s.bytes -= int64(len(old))
	} else {
		s.order = append(s.order, snapshot.Slug)
	}
	s.records[snapshot.Slug] = snapshot.Clone()
	s.blobs[snapshot.Slug] = data
	s.bytes += int64(len(data))
	return nil
}

// Get retrieves snapshot metadata by slug.
func (s *SnapshotStore) Get(_ context.Context, slug string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[slug]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return record.Clone(), nil
}

// Bytes retrieves the archive bytes by slug. The slice is shared and
// must not be modified; stored archives are never written in place.
func (s *SnapshotStore) Bytes(_ context.Context, slug string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[slug]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, nil
}

// Delete removes metadata and bytes.
func (s *SnapshotStore) Delete(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[slug]
	if !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(s.records, slug)
	delete(s.blobs, slug)
	s.bytes -= int64(len(data))
	if i := slices.Index(s.order, slug); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

// List returns all snapshots in insertion order.
func (s *SnapshotStore) List(_ context.Context) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Snapshot, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, s.records[slug].Clone())
	}
	return out, nil
}

// Has reports whether the slug is taken.
func (s *SnapshotStore) Has(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[slug]
	return ok, nil
}

// Stats returns the snapshot count and total archive bytes.
func (s *SnapshotStore) Stats(_ context.Context) (domain.SnapshotStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.SnapshotStats{Count: len(s.order), Bytes: s.bytes}, nil
}
