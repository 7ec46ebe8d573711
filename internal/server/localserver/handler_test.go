package localserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/storage/archive"
	"github.com/yndnr/supsim/internal/storage/memory"
)

func newTestSupervisor(t *testing.T) *service.Supervisor {
	t.Helper()
	ctx := context.Background()

	auth := service.NewAuthService(service.Credentials{Token: "test_header"})
	snapshots, err := service.NewSnapshotService(memory.NewSnapshotStore(), auth,
		service.SnapshotSettings{MinSize: 1024, MaxSize: 4096 + archive.HeaderReserve},
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	addons, err := service.NewAddonService(ctx, memory.NewAddonStore())
	if err != nil {
		t.Fatal(err)
	}
	ha := service.NewHomeAssistantService(memory.NewHomeAssistantStore(), nil)
	return service.NewSupervisor(snapshots, addons, ha, auth, service.HostInfo{Port: 8123})
}

func TestHandler_Gate(t *testing.T) {
	sup := newTestSupervisor(t)
	h := NewHandler(sup)
	ctx := context.Background()

	reply := h.Execute(ctx, "gate")
	if !reply.OK || reply.Data.(GateState).Held {
		t.Fatalf("gate = %+v", reply)
	}

	reply = h.Execute(ctx, "gate toggle")
	if !reply.OK || !reply.Data.(GateState).Held {
		t.Fatalf("gate toggle = %+v", reply)
	}

	_, err := sup.Snapshots.Create(ctx, &service.CreateRequest{Type: domain.SnapshotFull, Credential: "test_header"})
	if err == nil || !domain.IsDomainError(err, domain.ErrSnapshotBusy.Code) {
		t.Errorf("Create while held error = %v", err)
	}

	reply = h.Execute(ctx, "GATE toggle")
	if !reply.OK || reply.Data.(GateState).Held {
		t.Fatalf("second toggle = %+v", reply)
	}

	if reply := h.Execute(ctx, "gate open"); reply.OK {
		t.Error("gate open should be rejected")
	}
}

func TestHandler_SizeAndDelay(t *testing.T) {
	sup := newTestSupervisor(t)
	h := NewHandler(sup)
	ctx := context.Background()

	if reply := h.Execute(ctx, "size 2048 999999"); !reply.OK {
		t.Fatalf("size = %+v", reply)
	}
	settings := sup.Snapshots.Settings()
	if settings.MinSize != 2048 || settings.MaxSize != 999999 {
		t.Errorf("settings = %+v", settings)
	}

	if reply := h.Execute(ctx, "size 10 5"); reply.OK {
		t.Error("inverted size range accepted")
	}
	if reply := h.Execute(ctx, "size ten 5"); reply.OK {
		t.Error("non-numeric size accepted")
	}

	if reply := h.Execute(ctx, "delay 250ms"); !reply.OK {
		t.Fatalf("delay = %+v", reply)
	}
	if got := sup.Snapshots.Settings().CreateDelay; got != 250*time.Millisecond {
		t.Errorf("CreateDelay = %v", got)
	}
	if reply := h.Execute(ctx, "delay soon"); reply.OK {
		t.Error("bad duration accepted")
	}
}

func TestHandler_HomeAssistant(t *testing.T) {
	sup := newTestSupervisor(t)
	h := NewHandler(sup)
	ctx := context.Background()

	if err := sup.HomeAssistant.SetState(ctx, "sensor.backup", []byte(`{"state":"ok"}`)); err != nil {
		t.Fatal(err)
	}
	reply := h.Execute(ctx, "entity sensor.backup")
	if !reply.OK || reply.Data.(*domain.Entity).State != "ok" {
		t.Fatalf("entity = %+v", reply)
	}

	if reply := h.Execute(ctx, "entities clear"); !reply.OK {
		t.Fatalf("entities clear = %+v", reply)
	}
	if reply := h.Execute(ctx, "entity sensor.backup"); reply.OK {
		t.Error("entity survived clear")
	}

	sup.HomeAssistant.FireEvent(ctx, "backup_done", nil)
	reply = h.Execute(ctx, "events")
	if events := reply.Data.([]*domain.Event); len(events) != 1 {
		t.Errorf("events = %+v", events)
	}
}

func TestHandler_Addon(t *testing.T) {
	sup := newTestSupervisor(t)
	h := NewHandler(sup)
	ctx := context.Background()

	reply := h.Execute(ctx, "addon install backup_addon My Backup Addon")
	if !reply.OK {
		t.Fatalf("install = %+v", reply)
	}
	addon := reply.Data.(*domain.Addon)
	if addon.Name != "Name for My Backup Addon" || addon.State != domain.AddonStarted {
		t.Errorf("addon = %+v", addon)
	}

	if reply := h.Execute(ctx, "addon missing"); reply.OK || !strings.Contains(reply.Error, "not installed") {
		t.Errorf("missing addon = %+v", reply)
	}
}

func TestHandler_Unknown(t *testing.T) {
	h := NewHandler(newTestSupervisor(t))
	ctx := context.Background()

	if reply := h.Execute(ctx, ""); reply.OK {
		t.Error("empty command accepted")
	}
	if reply := h.Execute(ctx, "explode"); reply.OK || reply.Error != "unknown command: explode" {
		t.Errorf("unknown = %+v", reply)
	}
	if reply := h.Execute(ctx, "help"); !reply.OK || len(reply.Data.([]string)) != len(h.commands) {
		t.Errorf("help = %+v", reply)
	}
}
