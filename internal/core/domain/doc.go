// Package domain defines the core models of the simulated supervisor.
//
// Domain models are plain values without IO dependencies:
//
//   - Snapshot: metadata of a stored backup archive
//   - Addon: an installed add-on and its run state
//   - Entity, Event, Notification: Home Assistant state echoed back to tests
//   - Clock: the time source used when stamping snapshots
//   - Errors: coded domain errors shared by every layer
package domain
