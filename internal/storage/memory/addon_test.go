package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/supsim/internal/core/domain"
)

func TestAddonStore(t *testing.T) {
	store := NewAddonStore()
	ctx := context.Background()

	_ = store.Put(ctx, domain.NewAddon("b", "B"))
	_ = store.Put(ctx, domain.NewAddon("a", "A"))

	list, _ := store.List(ctx)
	if len(list) != 2 || list[0].Slug != "b" || list[1].Slug != "a" {
		t.Fatalf("List = %v", list)
	}

	updated, err := store.Update(ctx, "a", func(a *domain.Addon) error {
		a.State = domain.AddonStopped
		return nil
	})
	if err != nil || updated.State != domain.AddonStopped {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	boom := errors.New("boom")
	if _, err := store.Update(ctx, "a", func(a *domain.Addon) error {
		a.State = domain.AddonStarted
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v", err)
	}
	got, _ := store.Get(ctx, "a")
	if got.State != domain.AddonStopped {
		t.Error("failed Update leaked a partial change")
	}

	if _, err := store.Get(ctx, "zz"); !errors.Is(err, domain.ErrAddonNotFound) {
		t.Errorf("Get(unknown) error = %v", err)
	}
	if _, err := store.Update(ctx, "zz", func(*domain.Addon) error { return nil }); !errors.Is(err, domain.ErrAddonNotFound) {
		t.Errorf("Update(unknown) error = %v", err)
	}
}

func TestHomeAssistantStore(t *testing.T) {
	store := NewHomeAssistantStore()
	ctx := context.Background()

	_ = store.SetEntity(ctx, &domain.Entity{ID: "sensor.a", State: "on", Attributes: map[string]any{"x": 1}})
	e, ok := store.Entity(ctx, "sensor.a")
	if !ok || e.State != "on" {
		t.Fatalf("Entity = %+v, %v", e, ok)
	}
	e.Attributes["x"] = 2
	again, _ := store.Entity(ctx, "sensor.a")
	if again.Attributes["x"] != 1 {
		t.Error("Entity returned shared attributes")
	}

	store.ClearEntities(ctx)
	if _, ok := store.Entity(ctx, "sensor.a"); ok {
		t.Error("entity survived ClearEntities")
	}

	_ = store.AppendEvent(ctx, &domain.Event{Name: "one"})
	_ = store.AppendEvent(ctx, &domain.Event{Name: "two"})
	events := store.Events(ctx)
	if len(events) != 2 || events[0].Name != "one" {
		t.Errorf("Events = %v", events)
	}

	store.SetNotification(ctx, &domain.Notification{ID: "n", Title: "t"})
	if n := store.Notification(ctx); n == nil || n.ID != "n" {
		t.Errorf("Notification = %+v", n)
	}
	store.SetNotification(ctx, nil)
	if store.Notification(ctx) != nil {
		t.Error("Notification after dismiss should be nil")
	}
}
