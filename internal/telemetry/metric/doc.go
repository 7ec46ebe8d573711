// Package metric provides Prometheus metrics for the supervisor simulator.
//
//   - prometheus.go: the Registry, which also records snapshot events
//     for the service layer, and the /metrics handler
//   - collector.go: a scrape-time collector for build and uptime info
//
// Each Registry owns a private prometheus.Registry so tests and
// multiple servers in one process never collide.
package metric
