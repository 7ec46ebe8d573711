package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGateToggle(t *testing.T) {
	sim := newSimulator(t)

	var state struct {
		Held      bool `json:"held"`
		InnerHeld bool `json:"inner_held"`
	}
	sim.mustJSON(t, &state, "gate")
	if state.Held {
		t.Fatal("gate should start released")
	}
	sim.mustJSON(t, &state, "gate", "toggle")
	if !state.Held || !sim.sup.Snapshots.Gate().Held() {
		t.Fatalf("gate toggle = %+v", state)
	}
	sim.mustJSON(t, &state, "gate", "status")
	if !state.Held {
		t.Error("gate status should report held")
	}
	sim.mustJSON(t, &state, "gate", "toggle")
	if state.Held {
		t.Error("second toggle should release")
	}
}

func TestTuneAndStatus(t *testing.T) {
	sim := newSimulator(t)

	if _, err := sim.run(t, "", "tune", "size", "4096", "200000"); err != nil {
		t.Fatalf("tune size: %v", err)
	}
	if _, err := sim.run(t, "", "tune", "delay", "15ms"); err != nil {
		t.Fatalf("tune delay: %v", err)
	}
	settings := sim.sup.Snapshots.Settings()
	if settings.MinSize != 4096 || settings.MaxSize != 200000 || settings.CreateDelay.Milliseconds() != 15 {
		t.Errorf("settings = %+v", settings)
	}

	if _, err := sim.run(t, "", "tune", "size", "9000", "10"); err == nil {
		t.Error("inverted range should be rejected")
	}
	if _, err := sim.run(t, "", "tune", "size", "4096", "4096"); err == nil {
		t.Error("range narrower than the header reserve should be rejected")
	}

	var status struct {
		GateHeld  bool `json:"gate_held"`
		Snapshots struct {
			Count int `json:"count"`
		} `json:"snapshots"`
	}
	sim.mustJSON(t, &status, "status")
	if status.GateHeld || status.Snapshots.Count != 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestHAInspection(t *testing.T) {
	sim := newSimulator(t)

	req := func(path, body string) {
		t.Helper()
		resp, err := postJSON(sim.api.URL+path, body)
		if err != nil {
			t.Fatal(err)
		}
		if resp != 200 {
			t.Fatalf("POST %s = %d", path, resp)
		}
	}
	req("/core/api/events/backup_done", `{"slug":"abcd1234"}`)
	req("/core/api/states/sensor.backup_state", `{"state":"backed_up","attributes":{"count":1}}`)

	var events []map[string]any
	sim.mustJSON(t, &events, "ha", "events")
	if len(events) != 1 || events[0]["event_type"] != "backup_done" {
		t.Errorf("events = %v", events)
	}

	var entity map[string]any
	sim.mustJSON(t, &entity, "ha", "entity", "sensor.backup_state")
	if entity["state"] != "backed_up" {
		t.Errorf("entity = %v", entity)
	}

	if _, err := sim.run(t, "", "ha", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.run(t, "", "ha", "entity", "sensor.backup_state"); err == nil {
		t.Error("entity should be gone after clear")
	}
}

func TestShell(t *testing.T) {
	sim := newSimulator(t)

	out, err := sim.run(t, "gate toggle\n?ga\nbogus\nquit\n", "shell", "--no-history")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	for _, want := range []string{"supsim> ", `"held": true`, "gate toggle", "error: unknown command: bogus"} {
		if !strings.Contains(out, want) {
			t.Errorf("shell output missing %q:\n%s", want, out)
		}
	}
	if !sim.sup.Snapshots.Gate().Held() {
		t.Error("shell command did not reach the supervisor")
	}
}

func TestControl_NoSocket(t *testing.T) {
	sim := newSimulator(t)
	_, err := sim.run(t, "", "--socket", "", "gate")
	if err == nil || !strings.Contains(err.Error(), "no control socket") {
		t.Errorf("error = %v", err)
	}
}

func TestProfileDefaults(t *testing.T) {
	sim := newSimulator(t)
	profile := filepath.Join(t.TempDir(), "cli.yaml")
	content := "server: " + sim.api.URL + "\ntoken: " + testToken + "\nsocket: " + sim.socket + "\noutput: yaml\n"
	if err := os.WriteFile(profile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	app := App()
	var stdout strings.Builder
	app.Writer = &stdout
	app.ErrWriter = &strings.Builder{}
	if err := app.Run([]string{"supsim-cli", "--config", profile, "gate"}); err != nil {
		t.Fatalf("run with profile: %v", err)
	}
	if !strings.Contains(stdout.String(), "held: false") {
		t.Errorf("output = %q, want yaml from the profile", stdout.String())
	}

	stdout.Reset()
	app = App()
	app.Writer = &stdout
	app.ErrWriter = &strings.Builder{}
	if err := app.Run([]string{"supsim-cli", "--config", profile, "-o", "json", "addon", "info", "42"}); err != nil {
		t.Fatalf("addon info: %v", err)
	}
	if !strings.Contains(stdout.String(), `"state": "started"`) {
		t.Errorf("output = %q, flag should beat the profile", stdout.String())
	}
}
