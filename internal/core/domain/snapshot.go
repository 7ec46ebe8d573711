package domain

import (
	"strings"
	"time"
)

// Snapshot constraints.
const (
	// SnapshotIDLength is the length of generated snapshot slugs.
	SnapshotIDLength = 8

	// MaxSnapshotIDLength bounds slugs accepted from uploaded archives.
	MaxSnapshotIDLength = 64

	// DefaultSnapshotName is used when a create request carries no name.
	DefaultSnapshotName = "Default name"
)

// SnapshotType distinguishes full from partial backups.
type SnapshotType string

const (
	SnapshotFull    SnapshotType = "full"
	SnapshotPartial SnapshotType = "partial"
)

// Valid reports whether t is a known snapshot type.
func (t SnapshotType) Valid() bool {
	return t == SnapshotFull || t == SnapshotPartial
}

// Snapshot is the metadata of one stored backup archive.
//
// A Snapshot never exists in a store without its archive bytes; both are
// written and removed together.
type Snapshot struct {
	// Slug is the unique identifier, 8 lowercase alphanumerics when generated here.
	Slug string `json:"slug"`

	// Name is the caller supplied label.
	Name string `json:"name"`

	// Date is the creation time taken from the ambient Clock.
	Date time.Time `json:"date"`

	// Type is full or partial.
	Type SnapshotType `json:"type"`

	// Size is the total archive length in bytes.
	Size int64 `json:"size"`

	// Protected is true when the archive was created with a password.
	Protected bool `json:"protected"`

	// Folders lists included folders; empty means all.
	Folders []string `json:"folders"`

	// Addons lists included add-on slugs; empty means all.
	Addons []string `json:"addons"`
}

// Clone creates a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.Folders = cloneStrings(s.Folders)
	clone.Addons = cloneStrings(s.Addons)
	return &clone
}

// Validate checks the fields an archive must carry to be storable.
func (s *Snapshot) Validate() error {
	var violations []string

	if s.Slug == "" {
		violations = append(violations, "slug is required")
	}
	if len(s.Slug) > MaxSnapshotIDLength {
		violations = append(violations, "slug exceeds 64 characters")
	}
	if strings.ContainsAny(s.Slug, "/\\ \t\r\n") {
		violations = append(violations, "slug contains separators")
	}
	if !s.Type.Valid() {
		violations = append(violations, "type must be full or partial")
	}

	if len(violations) > 0 {
		return ErrCorruptArchive.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// IsValidSnapshotID reports whether id looks like a generated slug.
func IsValidSnapshotID(id string) bool {
	if len(id) != SnapshotIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// SnapshotStats summarizes a snapshot store.
type SnapshotStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
