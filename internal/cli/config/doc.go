// Package config holds the supsim-cli profile file (~/.supsim/cli.yaml).
//
// The profile supplies defaults for the global flags; explicit flags and
// SUPSIM_* environment variables win over it.
package config
