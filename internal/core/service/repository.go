package service

import (
	"context"

	"github.com/yndnr/supsim/internal/core/domain"
)

// SnapshotRepository stores snapshot metadata together with archive bytes.
//
// Implementations must write and remove both halves atomically, list in
// insertion order, and return domain.ErrSnapshotNotFound for unknown slugs.
type SnapshotRepository interface {
	// Put stores or replaces a snapshot. Replacing keeps the list position.
	Put(ctx context.Context, snapshot *domain.Snapshot, data []byte) error

	// Get retrieves snapshot metadata by slug.
	Get(ctx context.Context, slug string) (*domain.Snapshot, error)

	// Bytes retrieves the archive bytes by slug.
	Bytes(ctx context.Context, slug string) ([]byte, error)

	// Delete removes metadata and bytes.
	Delete(ctx context.Context, slug string) error

	// List returns all snapshots in insertion order.
	List(ctx context.Context) ([]*domain.Snapshot, error)

	// Has reports whether the slug is taken.
	Has(ctx context.Context, slug string) (bool, error)

	// Stats summarizes the stored snapshots.
	Stats(ctx context.Context) (domain.SnapshotStats, error)
}

// AddonRepository stores installed add-ons in install order.
type AddonRepository interface {
	Get(ctx context.Context, slug string) (*domain.Addon, error)
	Put(ctx context.Context, addon *domain.Addon) error
	List(ctx context.Context) ([]*domain.Addon, error)

	// Update applies fn to the stored add-on under the store lock.
	Update(ctx context.Context, slug string, fn func(*domain.Addon) error) (*domain.Addon, error)
}

// HomeAssistantRepository keeps the state posted to the Home Assistant API.
type HomeAssistantRepository interface {
	SetEntity(ctx context.Context, entity *domain.Entity) error
	Entity(ctx context.Context, id string) (*domain.Entity, bool)
	ClearEntities(ctx context.Context)

	AppendEvent(ctx context.Context, event *domain.Event) error
	Events(ctx context.Context) []*domain.Event

	// SetNotification replaces the notification; nil dismisses it.
	SetNotification(ctx context.Context, n *domain.Notification)
	Notification(ctx context.Context) *domain.Notification
}

// Recorder receives snapshot lifecycle signals for metrics.
type Recorder interface {
	SnapshotCreated(kind domain.SnapshotType)
	SnapshotRejected(reason string)
	SnapshotUploaded(ok bool)
	SnapshotDeleted()
	SnapshotsStored(stats domain.SnapshotStats)
	GateHeld(held bool)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotCreated(domain.SnapshotType) {}
func (nopRecorder) SnapshotRejected(string) {}
func (nopRecorder) SnapshotUploaded(bool) {}
func (nopRecorder) SnapshotDeleted() {}
func (nopRecorder) SnapshotsStored(domain.SnapshotStats) {}
func (nopRecorder) GateHeld(bool) {}
