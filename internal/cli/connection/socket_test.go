package connection

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeControl answers each line with the reply returned by fn.
func fakeControl(t *testing.T, fn func(line string) string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctl.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			conn.Write([]byte(fn(scanner.Text()) + "\n"))
		}
	}()
	return path
}

func TestSocketClient_Execute(t *testing.T) {
	path := fakeControl(t, func(line string) string {
		switch line {
		case "gate":
			return `{"ok":true,"data":{"held":false,"inner_held":false}}`
		case "gate toggle":
			return `{"ok":true,"data":{"held":true,"inner_held":false}}`
		default:
			return `{"ok":false,"error":"unknown command: ` + line + `"}`
		}
	})

	c := NewSocketClient(path)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var state struct {
		Held bool `json:"held"`
	}
	if err := c.Execute(ctx, "gate", &state); err != nil || state.Held {
		t.Fatalf("gate = %+v, %v", state, err)
	}
	// Same connection, second command.
	if err := c.Execute(ctx, "gate toggle", &state); err != nil || !state.Held {
		t.Fatalf("gate toggle = %+v, %v", state, err)
	}
	err := c.Execute(ctx, "bogus", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown command: bogus") {
		t.Errorf("bogus error = %v", err)
	}
}

func TestSocketClient_RejectsMultiline(t *testing.T) {
	c := NewSocketClient("/nonexistent.sock")
	if err := c.Execute(context.Background(), "gate\ntoggle", nil); err == nil {
		t.Error("expected error for multi-line command")
	}
}

func TestSocketClient_ConnectMissing(t *testing.T) {
	c := NewSocketClient(filepath.Join(t.TempDir(), "none.sock"))
	if err := c.Connect(context.Background()); err == nil {
		t.Error("Connect() should fail for a missing socket")
		c.Close()
	}
}

func TestSocketClient_CloseIdle(t *testing.T) {
	if err := NewSocketClient("/x.sock").Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
