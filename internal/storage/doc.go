// Package storage selects and opens the snapshot storage engine.
//
// Two engines implement service.SnapshotRepository:
//
//   - memory: maps guarded by one mutex (package memory), the default
//   - badger: an embedded Badger v3 database, in-memory when no
//     directory is configured, on disk otherwise
//
// Neither engine is required to survive a restart; the badger engine on
// disk simply happens to.
package storage
