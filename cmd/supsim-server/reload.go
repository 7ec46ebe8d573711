package main

import (
	"log/slog"

	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/infra/confloader"
	"github.com/yndnr/supsim/internal/server/config"
	"github.com/yndnr/supsim/internal/telemetry/logger"
)

// watchConfig reapplies the runtime-tunable settings whenever the file
// changes. Listen addresses and the storage engine need a restart.
func watchConfig(path string, loader *confloader.Loader, sup *service.Supervisor, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(loader.Reload)
		if err != nil {
			log.Error("config reload rejected", "error", err)
			return
		}
		applyConfig(cfg, sup, log)
	})
	watcher.StartAsync()
	return watcher, nil
}

func applyConfig(cfg *config.ServerConfig, sup *service.Supervisor, log *slog.Logger) {
	logger.SetLevel(cfg.Log.Level)
	sup.Auth.SetCredentials(credentials(cfg))

	if err := sup.Snapshots.SetSizeRange(cfg.Snapshot.MinSize, cfg.Snapshot.MaxSize); err != nil {
		log.Error("config reload: size range", "error", err)
	}
	if err := sup.Snapshots.SetCreateDelay(cfg.Snapshot.CreateDelay); err != nil {
		log.Error("config reload: create delay", "error", err)
	}
	log.Info("configuration reloaded", "config", config.Sanitize(cfg))
}
