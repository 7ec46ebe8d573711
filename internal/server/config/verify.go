package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/supsim/internal/storage"
	"github.com/yndnr/supsim/internal/storage/archive"
	"github.com/yndnr/supsim/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyAuth(&cfg.Auth),
		verifySnapshot(&cfg.Snapshot),
		verifyStorage(&cfg.Storage),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.ratelimit must not be negative")
	}
	return nil
}

func verifyAuth(cfg *AuthSection) error {
	if cfg.Token == "" {
		return errors.New("auth.token is required")
	}
	return nil
}

func verifySnapshot(cfg *SnapshotSection) error {
	if cfg.MinSize < 0 {
		return errors.New("snapshot.minsize must not be negative")
	}
	if cfg.MaxSize < cfg.MinSize {
		return fmt.Errorf("snapshot.maxsize %d is below snapshot.minsize %d", cfg.MaxSize, cfg.MinSize)
	}
	if cfg.MaxSize-cfg.MinSize < archive.HeaderReserve {
		return fmt.Errorf("snapshot size range [%d, %d] is narrower than the %d byte archive header reserve",
			cfg.MinSize, cfg.MaxSize, archive.HeaderReserve)
	}
	if cfg.CreateDelay < 0 {
		return errors.New("snapshot.createdelay must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case storage.EngineMemory, storage.EngineBadger:
		return nil
	default:
		return fmt.Errorf("storage.engine %q: want %s or %s", cfg.Engine, storage.EngineMemory, storage.EngineBadger)
	}
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("log.format %q: want json or text", cfg.Format)
	}
}
