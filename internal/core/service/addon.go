package service

import (
	"context"
	"encoding/json"
	"maps"
	"sync"

	"github.com/yndnr/supsim/internal/core/domain"
)

// Identity of the add-on that talks to the simulated supervisor.
const (
	DefaultSelfSlug = "self_slug"
	DefaultSelfName = "Home Assistant Google drive Backup"
)

// DefaultSelfOptions returns the options the self add-on starts with.
func DefaultSelfOptions() map[string]any {
	return map[string]any{
		"max_snapshots_in_hassio":       4,
		"max_snapshots_in_google_drive": 4,
		"days_between_snapshots":        3,
		"use_ssl":                       false,
	}
}

// SelfInfo is reported by /addons/self/info.
type SelfInfo struct {
	WebUI      string         `json:"webui"`
	IngressURL string         `json:"ingress_url"`
	Slug       string         `json:"slug"`
	Options    map[string]any `json:"options"`
}

// AddonService manages the add-on catalog.
type AddonService struct {
	repo     AddonRepository
	selfSlug string

	mu      sync.RWMutex
	options map[string]any
}

// NewAddonService creates an AddonService and installs the default
// catalog: the self add-on and two others, all started.
func NewAddonService(ctx context.Context, repo AddonRepository) (*AddonService, error) {
	s := &AddonService{
		repo:     repo,
		selfSlug: DefaultSelfSlug,
		options:  DefaultSelfOptions(),
	}

	defaults := []struct{ slug, name string }{
		{DefaultSelfSlug, DefaultSelfName},
		{"42", "The answer"},
		{"sgadg", "sdgsagsdgsggsd"},
	}
	for _, d := range defaults {
		if err := s.Install(ctx, d.slug, d.name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Install adds a started add-on, replacing any add-on with the same slug.
func (s *AddonService) Install(ctx context.Context, slug, name string) error {
	if slug == "" || slug == domain.SelfSlug {
		return domain.ErrBadRequest.WithDetails("invalid addon slug")
	}
	return s.repo.Put(ctx, domain.NewAddon(slug, name))
}

// List returns the installed add-ons.
func (s *AddonService) List(ctx context.Context) ([]*domain.Addon, error) {
	return s.repo.List(ctx)
}

// Get returns one add-on; unknown slugs fail with domain.ErrAddonNotFound.
func (s *AddonService) Get(ctx context.Context, slug string) (*domain.Addon, error) {
	return s.repo.Get(ctx, slug)
}

// Start moves a stopped add-on to started.
func (s *AddonService) Start(ctx context.Context, slug string) (*domain.Addon, error) {
	return s.transition(ctx, slug, domain.AddonStopped, domain.AddonStarted)
}

// Stop moves a started add-on to stopped.
func (s *AddonService) Stop(ctx context.Context, slug string) (*domain.Addon, error) {
	return s.transition(ctx, slug, domain.AddonStarted, domain.AddonStopped)
}

func (s *AddonService) transition(ctx context.Context, slug string, from, to domain.AddonState) (*domain.Addon, error) {
	return s.repo.Update(ctx, slug, func(a *domain.Addon) error {
		if a.State != from {
			return domain.ErrAddonState.WithDetails(string(a.State))
		}
		a.State = to
		return nil
	})
}

// SelfInfo describes the calling add-on.
func (s *AddonService) SelfInfo() *SelfInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &SelfInfo{
		WebUI:      "http://some/address",
		IngressURL: "/api/hassio_ingress/" + s.selfSlug,
		Slug:       s.selfSlug,
		Options:    maps.Clone(s.options),
	}
}

// UpdateOptions handles an options request. For the self add-on the body
// must carry an "options" object that replaces the current options; for
// any other add-on the body is merged into the add-on record.
func (s *AddonService) UpdateOptions(ctx context.Context, slug string, body []byte) error {
	if slug == domain.SelfSlug {
		var req struct {
			Options map[string]any `json:"options"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
		}
		if req.Options == nil {
			return domain.ErrBadRequest.WithDetails("options is required")
		}
		s.mu.Lock()
		s.options = req.Options
		s.mu.Unlock()
		return nil
	}

	var update domain.AddonUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
	}
	_, err := s.repo.Update(ctx, slug, update.Apply)
	return err
}

// Options returns a copy of the self add-on options.
func (s *AddonService) Options() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.options)
}
