package service

import (
	"context"
	"encoding/json"

	"github.com/yndnr/supsim/internal/core/domain"
)

// HomeAssistantService records what clients post to the Home Assistant
// API so tests can inspect it later.
type HomeAssistantService struct {
	repo  HomeAssistantRepository
	clock domain.Clock
}

// NewHomeAssistantService creates a HomeAssistantService.
func NewHomeAssistantService(repo HomeAssistantRepository, clock domain.Clock) *HomeAssistantService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &HomeAssistantService{repo: repo, clock: clock}
}

// SetState stores the state and attributes posted for an entity.
func (s *HomeAssistantService) SetState(ctx context.Context, entityID string, body []byte) error {
	var req struct {
		State      *string        `json:"state"`
		Attributes map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
	}
	if req.State == nil {
		return domain.ErrBadRequest.WithDetails("state is required")
	}
	if req.Attributes == nil {
		req.Attributes = map[string]any{}
	}

	return s.repo.SetEntity(ctx, &domain.Entity{
		ID:         entityID,
		State:      *req.State,
		Attributes: req.Attributes,
		UpdatedAt:  s.clock.Now(),
	})
}

// FireEvent appends an event with the posted payload.
func (s *HomeAssistantService) FireEvent(ctx context.Context, name string, body []byte) error {
	data := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
		}
	}
	event, err := domain.NewEvent(name, data, s.clock.Now())
	if err != nil {
		return err
	}
	return s.repo.AppendEvent(ctx, event)
}

// CreateNotification replaces the persistent notification.
func (s *HomeAssistantService) CreateNotification(ctx context.Context, body []byte) error {
	var n domain.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
	}
	s.repo.SetNotification(ctx, &n)
	return nil
}

// DismissNotification clears the persistent notification.
func (s *HomeAssistantService) DismissNotification(ctx context.Context) {
	s.repo.SetNotification(ctx, nil)
}

// Entity returns the last posted state of an entity.
func (s *HomeAssistantService) Entity(ctx context.Context, id string) (*domain.Entity, bool) {
	return s.repo.Entity(ctx, id)
}

// Events returns the recorded events, oldest first.
func (s *HomeAssistantService) Events(ctx context.Context) []*domain.Event {
	return s.repo.Events(ctx)
}

// Notification returns the current notification, or nil.
func (s *HomeAssistantService) Notification(ctx context.Context) *domain.Notification {
	return s.repo.Notification(ctx)
}

// ClearEntities forgets every recorded entity.
func (s *HomeAssistantService) ClearEntities(ctx context.Context) {
	s.repo.ClearEntities(ctx)
}
