package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/server/httpserver"
	"github.com/yndnr/supsim/internal/server/localserver"
	"github.com/yndnr/supsim/internal/storage/archive"
	"github.com/yndnr/supsim/internal/storage/memory"
)

const testToken = "test_header"

// simulator is a full in-process supervisor: REST API plus control socket.
type simulator struct {
	sup    *service.Supervisor
	api    *httptest.Server
	socket string
	dir    string
}

func newSimulator(t *testing.T) *simulator {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := service.NewAuthService(service.Credentials{Token: testToken, Username: "user", Password: "pass"})
	snapshots, err := service.NewSnapshotService(memory.NewSnapshotStore(), auth,
		service.SnapshotSettings{MinSize: 2048, MaxSize: 8192 + archive.HeaderReserve, DefaultName: "Default name"},
		service.WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	addons, err := service.NewAddonService(ctx, memory.NewAddonStore())
	if err != nil {
		t.Fatal(err)
	}
	ha := service.NewHomeAssistantService(memory.NewHomeAssistantStore(), nil)
	sup := service.NewSupervisor(snapshots, addons, ha, auth, service.HostInfo{Port: 8123})

	api := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{Supervisor: sup, Logger: log}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	socket := filepath.Join(dir, "ctl.sock")
	ctl := localserver.New(socket, localserver.NewHandler(sup), log)
	if err := ctl.Listen(); err != nil {
		t.Fatal(err)
	}
	go ctl.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ctl.Shutdown(ctx)
	})

	return &simulator{sup: sup, api: api, socket: socket, dir: dir}
}

// run executes supsim-cli against the simulator and returns stdout.
func (s *simulator) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := []string{"supsim-cli",
		"--config", filepath.Join(s.dir, "no-profile.yaml"),
		"--server", s.api.URL,
		"--token", testToken,
		"--socket", s.socket,
	}
	full = append(full, args...)
	err := app.Run(full)
	return stdout.String(), err
}

// mustJSON runs with -o json and decodes stdout into v.
func (s *simulator) mustJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := s.run(t, "", append([]string{"-o", "json"}, args...)...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("%v: bad json %q: %v", args, out, err)
	}
}
