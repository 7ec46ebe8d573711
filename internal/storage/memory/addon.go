package memory

import (
	"context"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

var _ service.AddonRepository = (*AddonStore)(nil)

// AddonStore keeps installed add-ons in install order.
type AddonStore struct {
	mu     sync.RWMutex
	order  []string
	addons map[string]*domain.Addon
}

// NewAddonStore creates an empty store.
func NewAddonStore() *AddonStore {
	return &AddonStore{addons: make(map[string]*domain.Addon)}
}

// Get retrieves an add-on by slug.
func (s *AddonStore) Get(_ context.Context, slug string) (*domain.Addon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.addons[slug]
	if !ok {
		return nil, domain.ErrAddonNotFound.WithDetails(slug)
	}
	return a.Clone(), nil
}

// Put installs or replaces an add-on.
func (s *AddonStore) Put(_ context.Context, addon *domain.Addon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addons[addon.Slug]; !ok {
		s.order = append(s.order, addon.Slug)
	}
	s.addons[addon.Slug] = addon.Clone()
	return nil
}

// List returns all add-ons in install order.
func (s *AddonStore) List(_ context.Context) ([]*domain.Addon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Addon, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, s.addons[slug].Clone())
	}
	return out, nil
}

// Update applies fn to a copy of the add-on and stores the copy only when
// fn succeeds.
func (s *AddonStore) Update(_ context.Context, slug string, fn func(*domain.Addon) error) (*domain.Addon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.addons[slug]
	if !ok {
		return nil, domain.ErrAddonNotFound.WithDetails(slug)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.addons[slug] = next
	return next.Clone(), nil
}
