package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v (%s)", err, buf.String())
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	New(Config{Level: "info", Format: "json", Output: &buf}).Info("hello", "component", "test")
	entry := decode(t, &buf)
	if entry["msg"] != "hello" || entry["component"] != "test" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	New(Config{Level: "info", Format: "text", Output: &buf}).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}
	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn not logged at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "error", Format: "json", Output: &buf})
	defer SetLevel("info")

	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatal("debug logged at error level")
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q", GetLevel())
	}
	l.Debug("kept")
	if buf.Len() == 0 {
		t.Error("debug not logged after SetLevel")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"INFO", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"bogus", "info"},
	}
	defer SetLevel("info")

	for _, tt := range tests {
		SetLevel(tt.in)
		if got := GetLevel(); got != tt.want {
			t.Errorf("SetLevel(%q) -> %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, ok := range []string{"debug", "info", "warn", "warning", "ERROR"} {
		if !ValidLevel(ok) {
			t.Errorf("ValidLevel(%q) = false", ok)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}
