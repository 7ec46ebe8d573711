// Package connection talks to a running supsim-server.
//
//   - http.go: the REST API, with the shared-secret header and the
//     {"result","data"} envelope
//   - socket.go: the line-oriented control socket
package connection
