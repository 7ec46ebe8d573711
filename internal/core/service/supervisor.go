package service

import (
	"context"
	"time"

	"github.com/yndnr/supsim/internal/core/domain"
)

// HostInfo is the static identity the simulated device reports.
type HostInfo struct {
	// Port is reported by /core/info as the Home Assistant port.
	Port int
}

// Supervisor is the process-wide state of the simulated device. It is
// built once at startup and shared by reference with every transport.
type Supervisor struct {
	Snapshots     *SnapshotService
	Addons        *AddonService
	HomeAssistant *HomeAssistantService
	Auth          *AuthService

	host    HostInfo
	started time.Time
}

// NewSupervisor wires the services together.
func NewSupervisor(snapshots *SnapshotService, addons *AddonService, ha *HomeAssistantService, auth *AuthService, host HostInfo) *Supervisor {
	return &Supervisor{
		Snapshots:     snapshots,
		Addons:        addons,
		HomeAssistant: ha,
		Auth:          auth,
		host:          host,
		started:       time.Now(),
	}
}

// Info is the payload of /info.
func (s *Supervisor) Info() map[string]any {
	return map[string]any{
		"supervisor":     "super version",
		"homeassistant":  "ha version",
		"hassos":         "hassos version",
		"hostname":       "hostname",
		"machine":        "machine",
		"arch":           "Arch",
		"supported_arch": "supported arch",
		"channel":        "channel",
	}
}

// CoreInfo is the payload of /core/info.
func (s *Supervisor) CoreInfo() map[string]any {
	return map[string]any{
		"version":      "1.3.3.7",
		"last_version": "1.3.3.8",
		"machine":      "VS Dev",
		"ip_address":   "127.0.0.1",
		"arch":         "x86",
		"image":        "image",
		"custom":       "false",
		"boot":         "true",
		"port":         s.host.Port,
		"ssl":          "false",
		"watchdog":     "what is this",
		"wait_boot":    "so many arguments",
	}
}

// SupervisorInfo is the payload of /supervisor/info.
func (s *Supervisor) SupervisorInfo(ctx context.Context) (map[string]any, error) {
	addons, err := s.Addons.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"addons": addons}, nil
}

// Log bodies of /supervisor/logs and /core/logs.
const (
	SupervisorLogs = "Supervisor Log line 1\nSupervisor Log Line 2"
	CoreLogs       = "Core Log line 1\nCore Log Line 2"
)

// Status summarizes the simulator for the control channel.
type Status struct {
	Uptime    string               `json:"uptime"`
	Snapshots domain.SnapshotStats `json:"snapshots"`
	GateHeld  bool                 `json:"gate_held"`
	InnerHeld bool                 `json:"inner_held"`
	Settings  SnapshotSettings     `json:"settings"`
}

// Status reports uptime, store totals and gate state.
func (s *Supervisor) Status(ctx context.Context) (*Status, error) {
	stats, err := s.Snapshots.repo.Stats(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	gate := s.Snapshots.Gate()
	return &Status{
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Snapshots: stats,
		GateHeld:  gate.Held(),
		InnerHeld: gate.InnerHeld(),
		Settings:  s.Snapshots.Settings(),
	}, nil
}
