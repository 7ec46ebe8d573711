package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/storage/archive"
	"github.com/yndnr/supsim/pkg/token"
)

// Default archive size range.
const (
	DefaultMinSnapshotSize int64 = 3 << 20
	DefaultMaxSnapshotSize int64 = 5 << 20
)

const slugAttempts = 16

// SnapshotSettings are the runtime-adjustable knobs of snapshot creation.
type SnapshotSettings struct {
	// MinSize and MaxSize bound the total archive size in bytes.
	MinSize int64 `json:"min_size"`
	MaxSize int64 `json:"max_size"`

	// CreateDelay is slept inside the inner lock to simulate a slow device.
	CreateDelay time.Duration `json:"create_delay"`

	// DefaultName labels snapshots created without a name.
	DefaultName string `json:"default_name"`
}

// Validate checks the size range. The range must be at least
// archive.HeaderReserve wide so that every archive fits inside it.
func (s SnapshotSettings) Validate() error {
	if s.MinSize < 0 || s.MaxSize < s.MinSize {
		return domain.ErrBadRequest.WithDetails(
			fmt.Sprintf("invalid size range [%d, %d]", s.MinSize, s.MaxSize))
	}
	if s.MaxSize-s.MinSize < archive.HeaderReserve {
		return domain.ErrBadRequest.WithDetails(
			fmt.Sprintf("size range [%d, %d] is narrower than the %d byte archive header reserve",
				s.MinSize, s.MaxSize, archive.HeaderReserve))
	}
	if s.CreateDelay < 0 {
		return domain.ErrBadRequest.WithDetails("negative create delay")
	}
	return nil
}

// SnapshotService implements the snapshot lifecycle.
//
// Creation goes through the Gate: outer lock, then inner lock, then the
// credential check, then the work. Every other operation bypasses the
// gate and talks to the repository directly.
type SnapshotService struct {
	repo   SnapshotRepository
	gate   *Gate
	auth   *AuthService
	clock  domain.Clock
	rec    Recorder
	logger *slog.Logger

	mu       sync.RWMutex
	settings SnapshotSettings
}

// SnapshotOption configures a SnapshotService.
type SnapshotOption func(*SnapshotService)

// WithClock sets the time source used to stamp snapshots.
func WithClock(c domain.Clock) SnapshotOption {
	return func(s *SnapshotService) { s.clock = c }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) SnapshotOption {
	return func(s *SnapshotService) { s.rec = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SnapshotOption {
	return func(s *SnapshotService) { s.logger = l }
}

// NewSnapshotService creates a SnapshotService with its own Gate.
func NewSnapshotService(repo SnapshotRepository, auth *AuthService, settings SnapshotSettings, opts ...SnapshotOption) (*SnapshotService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.DefaultName == "" {
		settings.DefaultName = domain.DefaultSnapshotName
	}

	s := &SnapshotService{
		repo:     repo,
		auth:     auth,
		clock:    domain.SystemClock{},
		rec:      nopRecorder{},
		logger:   slog.Default(),
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gate = NewGate(s.rec.GateHeld)
	return s, nil
}

// ============================================================================
// Create
// ============================================================================

// CreateRequest is a snapshot creation as received by the transport.
// Body is read only after the gate admits the request and the credential
// is checked, so a busy or unauthorized answer never waits on it. A nil
// Body means no options.
type CreateRequest struct {
	Type       domain.SnapshotType
	Credential string
	Body       io.Reader
}

type createOptions struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Folders  []string `json:"folders"`
	Addons   []string `json:"addons"`
}

// Create builds, stores and returns a new snapshot.
//
// It fails with domain.ErrSnapshotBusy without waiting when another
// creation holds the gate, and with domain.ErrUnauthorized after taking
// both locks when the credential is wrong.
func (s *SnapshotService) Create(ctx context.Context, req *CreateRequest) (*domain.Snapshot, error) {
	ticket, err := s.gate.TryBegin()
	if err != nil {
		s.rec.SnapshotRejected("busy")
		return nil, err
	}
	defer s.gate.End(ticket)

	var created *domain.Snapshot
	err = s.gate.WithInner(ctx, func(ctx context.Context) error {
		if err := s.auth.Verify(req.Credential); err != nil {
			s.rec.SnapshotRejected("unauthorized")
			return err
		}

		opts, err := decodeCreateOptions(req.Body)
		if err != nil {
			return err
		}

		settings := s.Settings()
		if settings.CreateDelay > 0 {
			timer := time.NewTimer(settings.CreateDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		slug, err := s.newSlug(ctx)
		if err != nil {
			return err
		}

		name := opts.Name
		if name == "" {
			name = settings.DefaultName
		}
		kind := req.Type
		if !kind.Valid() {
			kind = domain.SnapshotFull
		}

		blob, err := archive.Encode(archive.Spec{
			Slug:     slug,
			Name:     name,
			Date:     s.clock.Now(),
			Type:     kind,
			PadSize:  PadSize(settings.MinSize, settings.MaxSize),
			Folders:  opts.Folders,
			Addons:   opts.Addons,
			Password: opts.Password,
		})
		if err != nil {
			return err
		}

		snapshot, err := archive.Decode(blob)
		if err != nil {
			return domain.ErrInternalServer.WithDetails("created archive does not decode").WithCause(err)
		}
		if err := s.repo.Put(ctx, snapshot, blob); err != nil {
			return storageError(err)
		}

		created = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.SnapshotCreated(created.Type)
	s.recordStats(ctx)
	s.logger.Info("snapshot created",
		slog.String("slug", created.Slug),
		slog.String("type", string(created.Type)),
		slog.Int64("size", created.Size),
		slog.Bool("protected", created.Protected),
	)
	return created, nil
}

func decodeCreateOptions(body io.Reader) (*createOptions, error) {
	opts := &createOptions{}
	if body == nil {
		return opts, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.ErrBadRequest.WithDetails("unreadable body").WithCause(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, opts); err != nil {
		return nil, domain.ErrBadRequest.WithDetails("invalid json body").WithCause(err)
	}
	return opts, nil
}

func (s *SnapshotService) newSlug(ctx context.Context) (string, error) {
	for i := 0; i < slugAttempts; i++ {
		slug, err := token.GenerateSlug(domain.SnapshotIDLength)
		if err != nil {
			return "", domain.ErrInternalServer.WithCause(err)
		}
		taken, err := s.repo.Has(ctx, slug)
		if err != nil {
			return "", storageError(err)
		}
		if !taken {
			return slug, nil
		}
	}
	return "", domain.ErrInternalServer.WithDetails("could not allocate a unique slug")
}

// PadSize draws the padding length uniformly so that the whole archive,
// padding plus archive.HeaderReserve, stays within [min, max]. Validate
// rejects narrower ranges; PadSize falls back to min for them.
func PadSize(minSize, maxSize int64) int64 {
	hi := maxSize - archive.HeaderReserve
	if hi <= minSize {
		return minSize
	}
	return minSize + rand.Int64N(hi-minSize+1)
}

// ============================================================================
// Upload / Read / Delete / Restore
// ============================================================================

// Upload decodes an archive produced elsewhere and stores it under the
// slug it carries. Undecodable bytes fail with domain.ErrCorruptArchive
// and leave the store unchanged.
func (s *SnapshotService) Upload(ctx context.Context, data []byte) (*domain.Snapshot, error) {
	snapshot, err := archive.Decode(data)
	if err != nil {
		s.rec.SnapshotUploaded(false)
		s.logger.Warn("snapshot upload rejected", slog.Int("size", len(data)), slog.Any("error", err))
		return nil, err
	}
	if err := s.repo.Put(ctx, snapshot, data); err != nil {
		return nil, storageError(err)
	}

	s.rec.SnapshotUploaded(true)
	s.recordStats(ctx)
	s.logger.Info("snapshot uploaded", slog.String("slug", snapshot.Slug), slog.Int64("size", snapshot.Size))
	return snapshot, nil
}

// List returns all snapshots in insertion order.
func (s *SnapshotService) List(ctx context.Context) ([]*domain.Snapshot, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}

// Get returns the metadata of one snapshot.
func (s *SnapshotService) Get(ctx context.Context, slug string) (*domain.Snapshot, error) {
	snapshot, err := s.repo.Get(ctx, slug)
	if err != nil {
		return nil, storageError(err)
	}
	return snapshot, nil
}

// Download returns the archive bytes of one snapshot.
func (s *SnapshotService) Download(ctx context.Context, slug string) ([]byte, error) {
	data, err := s.repo.Bytes(ctx, slug)
	if err != nil {
		return nil, storageError(err)
	}
	return data, nil
}

// Delete removes a snapshot and its bytes.
func (s *SnapshotService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return storageError(err)
	}
	s.rec.SnapshotDeleted()
	s.recordStats(ctx)
	s.logger.Info("snapshot deleted", slog.String("slug", slug))
	return nil
}

// Restore checks the password of a stored snapshot. Restores occupy the
// outer lock like a creation, so they are refused while one is running.
func (s *SnapshotService) Restore(ctx context.Context, slug, password string) error {
	ticket, err := s.gate.TryBegin()
	if err != nil {
		return err
	}
	defer s.gate.End(ticket)

	data, err := s.repo.Bytes(ctx, slug)
	if err != nil {
		return storageError(err)
	}
	if err := archive.CheckPassword(data, password); err != nil {
		return err
	}
	s.logger.Info("snapshot restored", slog.String("slug", slug))
	return nil
}

// ============================================================================
// Fault injection
// ============================================================================

// ToggleFault flips the outer creation lock and returns its new state.
func (s *SnapshotService) ToggleFault() bool {
	held := s.gate.ToggleFault()
	s.logger.Warn("snapshot gate toggled", slog.Bool("held", held))
	return held
}

// Gate exposes the creation gate for inspection.
func (s *SnapshotService) Gate() *Gate {
	return s.gate
}

// Settings returns the current creation settings.
func (s *SnapshotService) Settings() SnapshotSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSizeRange changes the archive size range for later creations.
func (s *SnapshotService) SetSizeRange(minSize, maxSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	next.MinSize, next.MaxSize = minSize, maxSize
	if err := next.Validate(); err != nil {
		return err
	}
	s.settings = next
	return nil
}

// SetCreateDelay changes the simulated creation latency.
func (s *SnapshotService) SetCreateDelay(d time.Duration) error {
	if d < 0 {
		return domain.ErrBadRequest.WithDetails("negative create delay")
	}
	s.mu.Lock()
	s.settings.CreateDelay = d
	s.mu.Unlock()
	return nil
}

func (s *SnapshotService) recordStats(ctx context.Context) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Warn("snapshot stats unavailable", slog.Any("error", err))
		return
	}
	s.rec.SnapshotsStored(stats)
}

// storageError passes domain errors through and wraps everything else.
func storageError(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}
