package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/infra/buildinfo"
	"github.com/yndnr/supsim/internal/infra/confloader"
	"github.com/yndnr/supsim/internal/infra/shutdown"
	"github.com/yndnr/supsim/internal/server/config"
	"github.com/yndnr/supsim/internal/server/httpserver"
	"github.com/yndnr/supsim/internal/server/localserver"
	"github.com/yndnr/supsim/internal/storage"
	"github.com/yndnr/supsim/internal/storage/memory"
	"github.com/yndnr/supsim/internal/telemetry/logger"
	"github.com/yndnr/supsim/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "supsim-server",
		Usage:   "simulated supervisor backup device",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to configuration file", EnvVars: []string{"SUPSIM_CONFIG"}},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address (server.http.addr)"},
			&cli.StringFlag{Name: "socket", Usage: "control socket path (server.local.path)"},
			&cli.StringFlag{Name: "token", Usage: "API token (auth.token)"},
			&cli.StringFlag{Name: "storage", Usage: "storage engine, memory or badger (storage.engine)"},
			&cli.StringFlag{Name: "data-dir", Usage: "badger directory (storage.dir)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (log.level)"},
			&cli.StringFlag{Name: "log-format", Usage: "json or text (log.format)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":       "server.http.addr",
	"socket":     "server.local.path",
	"token":      "auth.token",
	"storage":    "storage.engine",
	"data-dir":   "storage.dir",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	return out
}

func run(c *cli.Context) error {
	opts := []confloader.Option{confloader.WithOverrides(overrides(c))}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	cfg, err := loadConfig(loader.Load)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting supsim-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath())
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	registry := metric.NewRegistry()

	repo, closer, err := storage.Open(storage.Config{
		Engine:      cfg.Storage.Engine,
		Dir:         cfg.Storage.Dir,
		GCInterval:  storage.DefaultConfig().GCInterval,
		GCThreshold: storage.DefaultConfig().GCThreshold,
	}, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if badgerStore, ok := repo.(*storage.BadgerStore); ok {
		badgerStore.RegisterMetrics(registry.Registerer())
	}

	sup, err := buildSupervisor(c.Context, cfg, repo, registry, log)
	if err != nil {
		closer.Close()
		return err
	}

	stop := shutdown.NewHandler(shutdown.DefaultTimeout, log)
	// Hooks run in reverse: storage closes last.
	stop.OnShutdown("storage", func(context.Context) error {
		return closer.Close()
	})

	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		closer.Close()
		return fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}
	api := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
		Supervisor:      sup,
		Metrics:         registry.Handler(),
		Observer:        registry,
		Logger:          log,
		GlobalRateLimit: cfg.Server.HTTP.RateLimit,
	}))
	stop.OnShutdown("http", api.Shutdown)

	go func() {
		log.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := api.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stop.Trigger(fmt.Errorf("http server: %w", err))
		}
	}()

	if path := cfg.Server.Local.Path; path != "" {
		ctl := localserver.New(path, localserver.NewHandler(sup), log)
		if err := ctl.Listen(); err != nil {
			stop.Trigger(fmt.Errorf("control socket: %w", err))
		} else {
			stop.OnShutdown("control", ctl.Shutdown)
			go func() {
				if err := ctl.Serve(); err != nil {
					stop.Trigger(fmt.Errorf("control socket: %w", err))
				}
			}()
		}
	}

	if path := loader.FilePath(); path != "" {
		watcher, err := watchConfig(path, loader, sup, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			stop.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := stop.Wait(c.Context); err != nil {
		log.Error("shutdown", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig runs load into fresh defaults and verifies the result.
func loadConfig(load func(target any) error) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildSupervisor(ctx context.Context, cfg *config.ServerConfig, repo service.SnapshotRepository, registry *metric.Registry, log *slog.Logger) (*service.Supervisor, error) {
	auth := service.NewAuthService(credentials(cfg))

	snapshots, err := service.NewSnapshotService(repo, auth, service.SnapshotSettings{
		MinSize:     cfg.Snapshot.MinSize,
		MaxSize:     cfg.Snapshot.MaxSize,
		CreateDelay: cfg.Snapshot.CreateDelay,
		DefaultName: cfg.Snapshot.DefaultName,
	}, service.WithRecorder(registry), service.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("snapshot service: %w", err)
	}

	addons, err := service.NewAddonService(ctx, memory.NewAddonStore())
	if err != nil {
		return nil, fmt.Errorf("addon service: %w", err)
	}
	ha := service.NewHomeAssistantService(memory.NewHomeAssistantStore(), nil)

	log.Info("services initialized", "storage", cfg.Storage.Engine, "host_port", cfg.Host.Port)
	return service.NewSupervisor(snapshots, addons, ha, auth, service.HostInfo{Port: cfg.Host.Port}), nil
}

func credentials(cfg *config.ServerConfig) service.Credentials {
	return service.Credentials{
		Token:    cfg.Auth.Token,
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
	}
}
