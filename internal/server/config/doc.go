// Package config defines the supsim-server configuration structure.
//
// The structure is loaded by confloader (file, then SUPSIM_ env, then
// flags) on top of Default(), checked with Verify and masked with
// Sanitize before it is logged.
package config
