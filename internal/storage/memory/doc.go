// Package memory provides the in-memory stores of the simulated supervisor.
//
//   - SnapshotStore: snapshot metadata and archive bytes, insertion ordered
//   - AddonStore: installed add-ons, install ordered
//   - HomeAssistantStore: entity states, events and the notification
//
// Each store guards all of its maps with a single RWMutex so that related
// entries are always observed together. Reads return clones.
package memory
