package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Server struct {
		HTTP struct {
			Addr      string `koanf:"addr"`
			RateLimit int    `koanf:"ratelimit"`
		} `koanf:"http"`
	} `koanf:"server"`
	Snapshot struct {
		MinSize     int64  `koanf:"minsize"`
		DefaultName string `koanf:"defaultname"`
	} `koanf:"snapshot"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "supsim.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", l.FilePath())
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/supsim.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q", l.envPrefix)
	}
	if l.FilePath() != "/etc/supsim.yaml" {
		t.Errorf("FilePath() = %q", l.FilePath())
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "0.0.0.0:56153"
    ratelimit: 20
`)
	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("server.http.addr"); got != "0.0.0.0:56153" {
		t.Errorf("server.http.addr = %q", got)
	}
	if got := l.GetInt("server.http.ratelimit"); got != 20 {
		t.Errorf("server.http.ratelimit = %d", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/supsim.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("SUPSIM_SERVER_HTTP_ADDR", "127.0.0.1:8080")
	t.Setenv("SUPSIM_SNAPSHOT_MINSIZE", "1024")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("server.http.addr"); got != "127.0.0.1:8080" {
		t.Errorf("server.http.addr = %q", got)
	}
	if got := l.GetInt("snapshot.minsize"); got != 1024 {
		t.Errorf("snapshot.minsize = %d", got)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_HOST_PORT", "9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("host.port"); got != "9090" {
		t.Errorf("host.port = %q", got)
	}
}

func TestLoader_LoadMap_Unflattens(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"snapshot.defaultname": "Nightly", "debug": true}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Snapshot.DefaultName != "Nightly" {
		t.Errorf("DefaultName = %q", cfg.Snapshot.DefaultName)
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "from-file:1"
snapshot:
  minsize: 10
  defaultname: "from file"
`)
	t.Setenv("SUPSIM_SERVER_HTTP_ADDR", "from-env:2")
	t.Setenv("SUPSIM_SNAPSHOT_MINSIZE", "20")

	l := NewLoader(WithConfigFile(path), WithOverrides(map[string]any{"snapshot.minsize": 30}))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTP.Addr != "from-env:2" {
		t.Errorf("Addr = %q, env should override file", cfg.Server.HTTP.Addr)
	}
	if cfg.Snapshot.MinSize != 30 {
		t.Errorf("MinSize = %d, overrides should win", cfg.Snapshot.MinSize)
	}
	if cfg.Snapshot.DefaultName != "from file" {
		t.Errorf("DefaultName = %q", cfg.Snapshot.DefaultName)
	}
}

func TestLoader_Load_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  http:\n    ratelimit: 5\n")

	var cfg testConfig
	cfg.Server.HTTP.Addr = "127.0.0.1:56153"
	cfg.Snapshot.DefaultName = "Default name"

	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTP.Addr != "127.0.0.1:56153" {
		t.Errorf("Addr = %q, default should survive", cfg.Server.HTTP.Addr)
	}
	if cfg.Server.HTTP.RateLimit != 5 {
		t.Errorf("RateLimit = %d", cfg.Server.HTTP.RateLimit)
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, "snapshot:\n  defaultname: first\n")
	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("snapshot:\n  minsize: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var next testConfig
	if err := l.Reload(&next); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if next.Snapshot.DefaultName != "" {
		t.Errorf("DefaultName = %q, stale value leaked across reload", next.Snapshot.DefaultName)
	}
	if next.Snapshot.MinSize != 7 {
		t.Errorf("MinSize = %d", next.Snapshot.MinSize)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Reload()")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_AllAndKeys(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"auth.token": "t", "auth.username": "u"}); err != nil {
		t.Fatal(err)
	}
	if len(l.All()) != 2 {
		t.Errorf("All() = %v", l.All())
	}
	if len(l.Keys()) < 2 {
		t.Errorf("Keys() = %v", l.Keys())
	}
	if l.Get("auth.token") != "t" {
		t.Errorf("Get(auth.token) = %v", l.Get("auth.token"))
	}
}
