package config

import "time"

// ServerConfig is the root configuration for supsim-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Auth     AuthSection     `koanf:"auth"`
	Snapshot SnapshotSection `koanf:"snapshot"`
	Storage  StorageSection  `koanf:"storage"`
	Log      LogSection      `koanf:"log"`
	Host     HostSection     `koanf:"host"`
}

// ServerSection configures the listeners.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit int `koanf:"ratelimit"`
}

// LocalConfig configures the control socket. An empty path disables it.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// AuthSection holds the credentials the simulated device accepts.
type AuthSection struct {
	Token    string `koanf:"token"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// SnapshotSection configures snapshot creation.
type SnapshotSection struct {
	MinSize     int64         `koanf:"minsize"`
	MaxSize     int64         `koanf:"maxsize"`
	CreateDelay time.Duration `koanf:"createdelay"`
	DefaultName string        `koanf:"defaultname"`
}

// StorageSection selects the snapshot storage engine.
type StorageSection struct {
	Engine string `koanf:"engine"`

	// Dir is only read by the badger engine; empty keeps badger in memory.
	Dir string `koanf:"dir"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// HostSection describes the simulated host.
type HostSection struct {
	Port int `koanf:"port"`
}
