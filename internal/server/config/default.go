package config

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:56153"

	DefaultToken    = "test_header"
	DefaultUsername = "user"
	DefaultPassword = "pass"

	DefaultMinSize     int64 = 3145728
	DefaultMaxSize     int64 = 5242880
	DefaultSnapshotName      = "Default name"

	DefaultStorageEngine = "memory"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultHostPort = 8123
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{Addr: DefaultHTTPAddr},
		},
		Auth: AuthSection{
			Token:    DefaultToken,
			Username: DefaultUsername,
			Password: DefaultPassword,
		},
		Snapshot: SnapshotSection{
			MinSize:     DefaultMinSize,
			MaxSize:     DefaultMaxSize,
			DefaultName: DefaultSnapshotName,
		},
		Storage: StorageSection{Engine: DefaultStorageEngine},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Host: HostSection{Port: DefaultHostPort},
	}
}
