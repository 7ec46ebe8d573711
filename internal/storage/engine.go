package storage

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/storage/memory"
)

// Engine names.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// Config selects the snapshot storage engine.
type Config struct {
	// Engine is "memory" (default) or "badger".
	Engine string

	// Dir is the badger directory; empty runs badger in memory.
	Dir string

	// GCInterval is the badger value log GC period. Default: 10m
	GCInterval time.Duration

	// GCThreshold is the badger GC discard ratio (0.0-1.0). Default: 0.5
	GCThreshold float64
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		Engine:      EngineMemory,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open opens the configured engine. The returned Closer releases it.
func Open(cfg Config, logger *slog.Logger) (service.SnapshotRepository, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Engine {
	case "", EngineMemory:
		logger.Info("snapshot storage ready", "engine", EngineMemory)
		return memory.NewSnapshotStore(), nopCloser{}, nil
	case EngineBadger:
		store, err := NewBadgerStore(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
