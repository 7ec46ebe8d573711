// Package command defines the supsim-cli command tree on urfave/cli/v2.
//
//   - root.go: the app, global flags and the profile defaults
//   - snapshot.go: the snapshot lifecycle over the REST API
//   - addon.go: add-on inspection and start/stop
//   - control.go: gate, tuning and Home Assistant inspection over the
//     control socket, plus the interactive shell
//
// Commands write results through output.Formatter to App.Writer and
// progress decoration to App.ErrWriter.
package command
