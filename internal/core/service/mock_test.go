package service

import (
	"context"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
)

// mockSnapshotRepo is a mock implementation of SnapshotRepository for testing.
type mockSnapshotRepo struct {
	mu      sync.Mutex
	order   []string
	records map[string]*domain.Snapshot
	blobs   map[string][]byte
	putErr  error
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{
		records: make(map[string]*domain.Snapshot),
		blobs:   make(map[string][]byte),
	}
}

func (m *mockSnapshotRepo) Put(_ context.Context, s *domain.Snapshot, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if _, ok := m.records[s.Slug]; !ok {
		m.order = append(m.order, s.Slug)
	}
	m.records[s.Slug] = s.Clone()
	m.blobs[s.Slug] = data
	return nil
}

func (m *mockSnapshotRepo) Get(_ context.Context, slug string) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[slug]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return s.Clone(), nil
}

func (m *mockSnapshotRepo) Bytes(_ context.Context, slug string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[slug]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, nil
}

func (m *mockSnapshotRepo) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[slug]; !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(m.records, slug)
	delete(m.blobs, slug)
	for i, s := range m.order {
		if s == slug {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockSnapshotRepo) List(_ context.Context) ([]*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Snapshot, 0, len(m.order))
	for _, slug := range m.order {
		out = append(out, m.records[slug].Clone())
	}
	return out, nil
}

func (m *mockSnapshotRepo) Has(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[slug]
	return ok, nil
}

func (m *mockSnapshotRepo) Stats(_ context.Context) (domain.SnapshotStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats domain.SnapshotStats
	for _, data := range m.blobs {
		stats.Count++
		stats.Bytes += int64(len(data))
	}
	return stats, nil
}

func (m *mockSnapshotRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// mockAddonRepo is a mock implementation of AddonRepository for testing.
type mockAddonRepo struct {
	order  []string
	addons map[string]*domain.Addon
}

func newMockAddonRepo() *mockAddonRepo {
	return &mockAddonRepo{addons: make(map[string]*domain.Addon)}
}

func (m *mockAddonRepo) Get(_ context.Context, slug string) (*domain.Addon, error) {
	a, ok := m.addons[slug]
	if !ok {
		return nil, domain.ErrAddonNotFound
	}
	return a.Clone(), nil
}

func (m *mockAddonRepo) Put(_ context.Context, a *domain.Addon) error {
	if _, ok := m.addons[a.Slug]; !ok {
		m.order = append(m.order, a.Slug)
	}
	m.addons[a.Slug] = a.Clone()
	return nil
}

func (m *mockAddonRepo) List(_ context.Context) ([]*domain.Addon, error) {
	out := make([]*domain.Addon, 0, len(m.order))
	for _, slug := range m.order {
		out = append(out, m.addons[slug].Clone())
	}
	return out, nil
}

func (m *mockAddonRepo) Update(_ context.Context, slug string, fn func(*domain.Addon) error) (*domain.Addon, error) {
	a, ok := m.addons[slug]
	if !ok {
		return nil, domain.ErrAddonNotFound
	}
	next := a.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.addons[slug] = next
	return next.Clone(), nil
}

// mockHomeAssistantRepo is a mock implementation of HomeAssistantRepository.
type mockHomeAssistantRepo struct {
	entities     map[string]*domain.Entity
	events       []*domain.Event
	notification *domain.Notification
}

func newMockHomeAssistantRepo() *mockHomeAssistantRepo {
	return &mockHomeAssistantRepo{entities: make(map[string]*domain.Entity)}
}

func (m *mockHomeAssistantRepo) SetEntity(_ context.Context, e *domain.Entity) error {
	m.entities[e.ID] = e.Clone()
	return nil
}

func (m *mockHomeAssistantRepo) Entity(_ context.Context, id string) (*domain.Entity, bool) {
	e, ok := m.entities[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (m *mockHomeAssistantRepo) ClearEntities(_ context.Context) {
	m.entities = make(map[string]*domain.Entity)
}

func (m *mockHomeAssistantRepo) AppendEvent(_ context.Context, e *domain.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockHomeAssistantRepo) Events(_ context.Context) []*domain.Event {
	return append([]*domain.Event(nil), m.events...)
}

func (m *mockHomeAssistantRepo) SetNotification(_ context.Context, n *domain.Notification) {
	m.notification = n
}

func (m *mockHomeAssistantRepo) Notification(_ context.Context) *domain.Notification {
	return m.notification
}

// recordingRecorder captures Recorder calls.
type recordingRecorder struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
	gate     []bool
	stats    domain.SnapshotStats
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{rejected: make(map[string]int)}
}

func (r *recordingRecorder) SnapshotCreated(domain.SnapshotType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *recordingRecorder) SnapshotRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[reason]++
}

func (r *recordingRecorder) SnapshotUploaded(bool) {}
func (r *recordingRecorder) SnapshotDeleted() {}

func (r *recordingRecorder) SnapshotsStored(stats domain.SnapshotStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = stats
}

func (r *recordingRecorder) GateHeld(held bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = append(r.gate, held)
}
