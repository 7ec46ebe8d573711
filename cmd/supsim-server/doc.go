// Package main provides the entry point for supsim-server.
//
// The server is the simulated supervisor device. It provides:
//
//   - the supervisor REST API (snapshots, add-ons, Home Assistant echo)
//   - a local Unix socket for the control protocol (no token required)
//   - Prometheus metrics at /metrics
//
// Usage:
//
//	supsim-server [flags]
//	supsim-server --config /etc/supsim/supsim.yaml
//	supsim-server --addr 0.0.0.0:56153 --socket /run/supsim.sock
//
// Configuration is read from defaults, then the file, then SUPSIM_
// environment variables, then flags. Edits to the file are applied live
// where that makes sense (log level, credentials, size range, delay).
package main
