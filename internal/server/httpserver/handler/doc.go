// Package handler provides the HTTP handlers of the simulated supervisor.
//
// Responses use the supervisor envelope: {"result":"ok","data":...} on
// success, {"result":"<message>"} with an X-Error-Code header on failure.
// Log endpoints answer in plain text and the Home Assistant echo
// endpoints answer with an empty body.
package handler
