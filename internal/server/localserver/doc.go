// Package localserver provides the control channel of the simulator.
//
// It listens on a Unix domain socket and speaks a line protocol: one
// command per line, one JSON reply per line,
//
//	{"ok":true,"data":...}
//	{"ok":false,"error":"..."}
//
// The channel is for test harnesses. It can hold the snapshot gate,
// change creation timing and inspect what clients posted to the Home
// Assistant API. It is never exposed on the HTTP listener; file system
// permissions on the socket are the only access control.
package localserver
