// Package main provides the entry point for supsim-cli.
//
// The CLI talks to a running supsim-server:
//
//   - snapshots and add-ons over the REST API (token required)
//   - gate, tuning and Home Assistant inspection over the control socket
//
// Usage:
//
//	supsim-cli snapshot list -o json
//	supsim-cli --socket /run/supsim.sock gate toggle
//	supsim-cli shell
package main
