package localserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

// Reply is one line of the control protocol.
type Reply struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// GateState is the reply of the gate commands.
type GateState struct {
	Held      bool `json:"held"`
	InnerHeld bool `json:"inner_held"`
}

type command func(ctx context.Context, args []string) (any, error)

// Handler executes control commands against the supervisor.
type Handler struct {
	sup      *service.Supervisor
	commands map[string]command
}

// NewHandler creates a new Handler.
func NewHandler(sup *service.Supervisor) *Handler {
	h := &Handler{sup: sup}
	h.commands = map[string]command{
		"status":       h.handleStatus,
		"gate":         h.handleGate,
		"size":         h.handleSize,
		"delay":        h.handleDelay,
		"events":       h.handleEvents,
		"entity":       h.handleEntity,
		"entities":     h.handleEntities,
		"notification": h.handleNotification,
		"addon":        h.handleAddon,
		"help":         h.handleHelp,
	}
	return h
}

// Execute runs one command line.
func (h *Handler) Execute(ctx context.Context, line string) Reply {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Reply{Error: "empty command"}
	}

	cmd, ok := h.commands[strings.ToLower(fields[0])]
	if !ok {
		return Reply{Error: "unknown command: " + fields[0]}
	}
	data, err := cmd(ctx, fields[1:])
	if err != nil {
		return Reply{Error: errorText(err)}
	}
	return Reply{OK: true, Data: data}
}

func errorText(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return de.Message + ": " + de.Details
		}
		return de.Message
	}
	return err.Error()
}

func (h *Handler) handleStatus(ctx context.Context, _ []string) (any, error) {
	return h.sup.Status(ctx)
}

func (h *Handler) handleGate(_ context.Context, args []string) (any, error) {
	gate := h.sup.Snapshots.Gate()
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "toggle":
		h.sup.Snapshots.ToggleFault()
	default:
		return nil, errors.New("usage: gate [toggle]")
	}
	return GateState{Held: gate.Held(), InnerHeld: gate.InnerHeld()}, nil
}

func (h *Handler) handleSize(_ context.Context, args []string) (any, error) {
	if len(args) != 2 {
		return nil, errors.New("usage: size <min> <max>")
	}
	minSize, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid min size %q", args[0])
	}
	maxSize, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid max size %q", args[1])
	}
	if err := h.sup.Snapshots.SetSizeRange(minSize, maxSize); err != nil {
		return nil, err
	}
	return h.sup.Snapshots.Settings(), nil
}

func (h *Handler) handleDelay(_ context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("usage: delay <duration>")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", args[0])
	}
	if err := h.sup.Snapshots.SetCreateDelay(d); err != nil {
		return nil, err
	}
	return h.sup.Snapshots.Settings(), nil
}

func (h *Handler) handleEvents(ctx context.Context, _ []string) (any, error) {
	return h.sup.HomeAssistant.Events(ctx), nil
}

func (h *Handler) handleEntity(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("usage: entity <id>")
	}
	entity, ok := h.sup.HomeAssistant.Entity(ctx, args[0])
	if !ok {
		return nil, fmt.Errorf("entity %s not found", args[0])
	}
	return entity, nil
}

func (h *Handler) handleEntities(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 || args[0] != "clear" {
		return nil, errors.New("usage: entities clear")
	}
	h.sup.HomeAssistant.ClearEntities(ctx)
	return nil, nil
}

func (h *Handler) handleNotification(ctx context.Context, _ []string) (any, error) {
	return h.sup.HomeAssistant.Notification(ctx), nil
}

func (h *Handler) handleAddon(ctx context.Context, args []string) (any, error) {
	switch {
	case len(args) == 1:
		return h.sup.Addons.Get(ctx, args[0])
	case len(args) >= 3 && args[0] == "install":
		slug, name := args[1], strings.Join(args[2:], " ")
		if err := h.sup.Addons.Install(ctx, slug, name); err != nil {
			return nil, err
		}
		return h.sup.Addons.Get(ctx, slug)
	default:
		return nil, errors.New("usage: addon <slug> | addon install <slug> <name...>")
	}
}

func (h *Handler) handleHelp(context.Context, []string) (any, error) {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
