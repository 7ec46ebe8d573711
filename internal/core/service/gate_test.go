package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/supsim/internal/core/domain"
)

func TestGate_TryBeginRejectsWhileHeld(t *testing.T) {
	g := NewGate(nil)

	ticket, err := g.TryBegin()
	if err != nil {
		t.Fatalf("TryBegin() error = %v", err)
	}
	if _, err := g.TryBegin(); !errors.Is(err, domain.ErrSnapshotBusy) {
		t.Fatalf("second TryBegin() error = %v, want ErrSnapshotBusy", err)
	}

	g.End(ticket)
	if g.Held() {
		t.Fatal("Held() = true after End")
	}
	if _, err := g.TryBegin(); err != nil {
		t.Fatalf("TryBegin() after End error = %v", err)
	}
}

func TestGate_ToggleFault(t *testing.T) {
	g := NewGate(nil)

	for i := 1; i <= 4; i++ {
		held := g.ToggleFault()
		wantHeld := i%2 == 1
		if held != wantHeld {
			t.Fatalf("toggle %d: held = %v, want %v", i, held, wantHeld)
		}

		ticket, err := g.TryBegin()
		if wantHeld {
			if !errors.Is(err, domain.ErrSnapshotBusy) {
				t.Fatalf("toggle %d: TryBegin() error = %v, want ErrSnapshotBusy", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("toggle %d: TryBegin() error = %v", i, err)
		}
		g.End(ticket)
	}
}

func TestGate_EndAfterToggleDoesNotReleaseOthers(t *testing.T) {
	g := NewGate(nil)

	first, err := g.TryBegin()
	if err != nil {
		t.Fatal(err)
	}

	// Toggle releases the lock held by the first flow.
	if held := g.ToggleFault(); held {
		t.Fatal("ToggleFault() on a held gate should release it")
	}

	second, err := g.TryBegin()
	if err != nil {
		t.Fatalf("TryBegin() after release error = %v", err)
	}

	g.End(first)
	if !g.Held() {
		t.Fatal("End of a stale ticket released the current holder")
	}

	g.End(second)
	if g.Held() {
		t.Fatal("End of the current ticket should release the gate")
	}
}

func TestGate_EndDoesNotReleaseFault(t *testing.T) {
	g := NewGate(nil)

	ticket, err := g.TryBegin()
	if err != nil {
		t.Fatal(err)
	}
	g.ToggleFault() // release
	g.ToggleFault() // wedge

	g.End(ticket)
	if !g.Held() {
		t.Fatal("a flow's End should not clear a fault")
	}
}

func TestGate_WithInner(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	var sawInner bool
	err := g.WithInner(ctx, func(context.Context) error {
		sawInner = g.InnerHeld()
		return nil
	})
	if err != nil {
		t.Fatalf("WithInner() error = %v", err)
	}
	if !sawInner {
		t.Error("InnerHeld() = false inside WithInner")
	}
	if g.InnerHeld() {
		t.Error("InnerHeld() = true after WithInner returned")
	}

	want := errors.New("boom")
	if err := g.WithInner(ctx, func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("WithInner() error = %v, want %v", err, want)
	}
	if g.InnerHeld() {
		t.Error("inner lock leaked after an error")
	}
}

func TestGate_WithInnerCancelled(t *testing.T) {
	g := NewGate(nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.WithInner(context.Background(), func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := g.WithInner(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WithInner() error = %v, want DeadlineExceeded", err)
	}
	if called {
		t.Error("fn ran without the inner lock")
	}

	close(release)
	<-done
}

func TestGate_OnChange(t *testing.T) {
	var states []bool
	g := NewGate(func(held bool) { states = append(states, held) })

	ticket, _ := g.TryBegin()
	g.End(ticket)
	g.ToggleFault()

	want := []bool{true, false, true}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}
