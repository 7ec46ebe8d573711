package domain

import "maps"

// AddonState is the run state of an add-on.
type AddonState string

const (
	AddonStarted AddonState = "started"
	AddonStopped AddonState = "stopped"
)

// Boot modes.
const (
	BootAuto   = "auto"
	BootManual = "manual"
)

// SelfSlug addresses the add-on making the request.
const SelfSlug = "self"

// Addon is an installed add-on as reported by the supervisor.
type Addon struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Version      string         `json:"version"`
	Watchdog     bool           `json:"watchdog"`
	Boot         string         `json:"boot"`
	IngressEntry string         `json:"ingress_entry"`
	State        AddonState     `json:"state"`
	Options      map[string]any `json:"options,omitempty"`
}

// NewAddon returns a started add-on with boot mode auto, the state a fresh
// install is reported in.
func NewAddon(slug, name string) *Addon {
	return &Addon{
		Slug:         slug,
		Name:         "Name for " + name,
		Description:  slug + " description",
		Version:      "v1.0",
		Boot:         BootAuto,
		IngressEntry: "/api/hassio_ingress/" + slug,
		State:        AddonStarted,
	}
}

// Clone creates a copy of the add-on.
func (a *Addon) Clone() *Addon {
	clone := *a
	clone.Options = maps.Clone(a.Options)
	return &clone
}

// AddonUpdate carries the optional fields of an options request.
type AddonUpdate struct {
	Boot     *string        `json:"boot,omitempty"`
	Watchdog *bool          `json:"watchdog,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// Apply merges the update into a.
func (u *AddonUpdate) Apply(a *Addon) error {
	if u.Boot != nil {
		if *u.Boot != BootAuto && *u.Boot != BootManual {
			return ErrBadRequest.WithDetails("boot must be auto or manual")
		}
		a.Boot = *u.Boot
	}
	if u.Watchdog != nil {
		a.Watchdog = *u.Watchdog
	}
	if u.Options != nil {
		if a.Options == nil {
			a.Options = make(map[string]any, len(u.Options))
		}
		maps.Copy(a.Options, u.Options)
	}
	return nil
}
