// Package shutdown runs cleanup hooks when supsim-server is asked to stop.
//
// A stop is requested by SIGINT, SIGTERM or an explicit Trigger (used
// when a listener fails). Hooks then run last-registered first under a
// shared deadline, so listeners registered after storage close before it.
package shutdown
