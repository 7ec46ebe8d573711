// Package httpserver provides the HTTP server of the simulated supervisor.
//
// It uses net/http with Go 1.22 method patterns. Every request passes
// through Recover, RequestID, Metrics, Audit and the optional RateLimit
// middleware; everything except snapshot creation also passes Auth.
// Creation checks the credential itself, inside the snapshot gate.
//
// @req RQ-0301
package httpserver
