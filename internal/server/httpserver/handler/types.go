package handler

import "github.com/yndnr/supsim/internal/core/domain"

// ResultOK is the envelope result of every successful JSON response.
const ResultOK = "ok"

// Response is the standard API response envelope.
type Response struct {
	Result  string `json:"result"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// CreateSnapshotResponse is the data of a snapshot creation or upload.
type CreateSnapshotResponse struct {
	Slug string `json:"slug"`
}

// ListSnapshotsResponse is the data of GET /snapshots.
type ListSnapshotsResponse struct {
	Snapshots []*domain.Snapshot `json:"snapshots"`
}

// RestoreRequest is the body of the restore endpoints.
type RestoreRequest struct {
	Password string `json:"password"`
}

// LoginRequest is the body of /auth.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AddonInfoResponse is the data of GET /addons/{slug}/info.
type AddonInfoResponse struct {
	Boot     string            `json:"boot"`
	Watchdog bool              `json:"watchdog"`
	State    domain.AddonState `json:"state"`
}
