// Package service implements the behaviour of the simulated supervisor.
//
// Services hold the business rules and define the storage interfaces they
// depend on, so storage engines can be swapped and faked in tests:
//
//   - Gate: the two-stage lock serializing snapshot creation, plus the
//     fault toggle that wedges it
//   - SnapshotService: create, upload, list, info, download, delete, restore
//   - AddonService: the add-on catalog and its start/stop/options operations
//   - HomeAssistantService: entity states, events and notifications echoed
//     back to the test harness
//   - AuthService: shared-secret and username/password checks
//   - Supervisor: the aggregate built once at startup and shared by the
//     transports
package service
