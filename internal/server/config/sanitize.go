package config

import "strings"

// Sanitize returns a copy of the config with secrets masked for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Auth.Token = maskSecret(sanitized.Auth.Token)
	sanitized.Auth.Password = maskSecret(sanitized.Auth.Password)
	return &sanitized
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
