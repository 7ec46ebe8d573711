package config

// CLIConfig is the configuration for supsim-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token"`
	Socket string `yaml:"socket"`
	Output string `yaml:"output"` // table, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://127.0.0.1:56153",
		Token:  "test_header",
		Output: "table",
	}
}
