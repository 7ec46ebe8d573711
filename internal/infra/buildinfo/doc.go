// Package buildinfo exposes build-time version information for the
// supsim binaries. The values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/supsim/internal/infra/buildinfo.Version=v0.3.0"
package buildinfo
