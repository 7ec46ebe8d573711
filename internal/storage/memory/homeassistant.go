package memory

import (
	"context"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

var _ service.HomeAssistantRepository = (*HomeAssistantStore)(nil)

// HomeAssistantStore keeps entity states, fired events and the current
// notification.
type HomeAssistantStore struct {
	mu           sync.RWMutex
	entities     map[string]*domain.Entity
	events       []*domain.Event
	notification *domain.Notification
}

// NewHomeAssistantStore creates an empty store.
func NewHomeAssistantStore() *HomeAssistantStore {
	return &HomeAssistantStore{entities: make(map[string]*domain.Entity)}
}

func (s *HomeAssistantStore) SetEntity(_ context.Context, entity *domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity.Clone()
	return nil
}

func (s *HomeAssistantStore) Entity(_ context.Context, id string) (*domain.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (s *HomeAssistantStore) ClearEntities(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make(map[string]*domain.Entity)
}

func (s *HomeAssistantStore) AppendEvent(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the event log, oldest first.
func (s *HomeAssistantStore) Events(_ context.Context) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *HomeAssistantStore) SetNotification(_ context.Context, n *domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n == nil {
		s.notification = nil
		return
	}
	clone := *n
	s.notification = &clone
}

func (s *HomeAssistantStore) Notification(_ context.Context) *domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.notification == nil {
		return nil
	}
	clone := *s.notification
	return &clone
}
