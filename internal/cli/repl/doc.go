// Package repl is the interactive control shell of supsim-cli.
//
// Each line typed at the "supsim>" prompt is sent to the control socket
// as one command. A line starting with "?" lists the commands matching
// the rest of the line instead. History is kept in ~/.supsim/history.
package repl
