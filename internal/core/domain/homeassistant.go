package domain

import (
	"crypto/rand"
	"maps"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity is the last state posted for a Home Assistant entity.
type Entity struct {
	ID         string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
	UpdatedAt  time.Time      `json:"last_updated"`
}

// Clone creates a copy of the entity.
func (e *Entity) Clone() *Entity {
	clone := *e
	clone.Attributes = maps.Clone(e.Attributes)
	return &clone
}

// Event is one fired Home Assistant event.
type Event struct {
	ID      string         `json:"id"`
	Name    string         `json:"event_type"`
	Data    map[string]any `json:"data"`
	FiredAt time.Time      `json:"time_fired"`
}

// NewEvent creates an event with a lowercase ULID identifier.
func NewEvent(name string, data map[string]any, at time.Time) (*Event, error) {
	id, err := ulid.New(ulid.Timestamp(at), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, ErrInternalServer.WithCause(err)
	}
	return &Event{
		ID:      strings.ToLower(id.String()),
		Name:    name,
		Data:    data,
		FiredAt: at,
	}, nil
}

// Notification is the single persistent notification shown in Home Assistant.
type Notification struct {
	ID      string `json:"notification_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
