package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler(0, nil)
	if h.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", h.timeout, DefaultTimeout)
	}
	if h.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func TestHandler_HooksRunInReverse(t *testing.T) {
	h := NewHandler(time.Second, quietLogger())

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"storage", "http", "control"} {
		name := name
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger(nil)
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if got := strings.Join(order, ","); got != "control,http,storage" {
		t.Errorf("hook order = %s", got)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait")
	}
}

func TestHandler_TriggerCauseAndHookErrors(t *testing.T) {
	h := NewHandler(time.Second, quietLogger())
	cause := errors.New("listener died")
	hookErr := errors.New("flush failed")

	ran := false
	h.OnShutdown("storage", func(context.Context) error { return hookErr })
	h.OnShutdown("http", func(context.Context) error {
		ran = true
		return nil
	})

	h.Trigger(cause)
	h.Trigger(errors.New("ignored"))

	err := h.Wait(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("Wait() error = %v, want cause", err)
	}
	if !errors.Is(err, hookErr) {
		t.Errorf("Wait() error = %v, want hook error", err)
	}
	if !strings.Contains(err.Error(), "storage:") {
		t.Errorf("Wait() error = %q, want hook name", err)
	}
	if !ran {
		t.Error("a failing hook should not stop later hooks")
	}
}

func TestHandler_ContextCancel(t *testing.T) {
	h := NewHandler(time.Second, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(50*time.Millisecond, quietLogger())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger(nil)
	err := h.Wait(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_Signal(t *testing.T) {
	h := NewHandler(time.Second, quietLogger())
	called := make(chan struct{})
	h.OnShutdown("signal", func(context.Context) error {
		close(called)
		return nil
	})

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install its signal handler.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after SIGTERM")
	}
	select {
	case <-called:
	default:
		t.Error("hook was not called")
	}
}
