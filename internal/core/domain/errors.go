package domain

import (
	"errors"
	"fmt"
)

// DomainError is a supervisor error carrying a stable code.
//
// Codes follow SUP-<AREA>-<STATUS><SEQ>; the transport derives the HTTP
// status from the trailing four digits.
type DomainError struct {
	Code    string // Error code (e.g., "SUP-SNAP-4040")
	Message string // Human-readable message, also the envelope "result"
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on code only, so wrapped copies still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates a missing or wrong shared-secret credential.
	ErrUnauthorized = NewDomainError("SUP-AUTH-4010", "unauthorized")

	// ErrInvalidCredentials indicates a username/password pair was rejected.
	ErrInvalidCredentials = NewDomainError("SUP-AUTH-4001", "invalid username or password")
)

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrSnapshotNotFound indicates the snapshot slug is unknown.
	ErrSnapshotNotFound = NewDomainError("SUP-SNAP-4040", "snapshot not found")

	// ErrSnapshotBusy indicates another creation holds the gate.
	ErrSnapshotBusy = NewDomainError("SUP-SNAP-4090", "snapshot already in progress")

	// ErrSnapshotPassword indicates a restore was attempted with the wrong password.
	ErrSnapshotPassword = NewDomainError("SUP-SNAP-4001", "invalid snapshot password")
)

// ============================================================================
// Archive Errors (ARC)
// ============================================================================

var (
	// ErrCorruptArchive indicates bytes that cannot be decoded as a snapshot.
	// The transport reports it inside a normal envelope.
	ErrCorruptArchive = NewDomainError("SUP-ARC-4220", "Bad snapshot")
)

// ============================================================================
// Add-on Errors (ADDON)
// ============================================================================

var (
	// ErrAddonNotFound indicates the add-on slug is not installed.
	// Reported as 400, like the device does.
	ErrAddonNotFound = NewDomainError("SUP-ADDON-4000", "addon not installed")

	// ErrAddonState indicates a start/stop from the wrong state.
	ErrAddonState = NewDomainError("SUP-ADDON-4001", "addon is not in the required state")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SUP-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("SUP-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SUP-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SUP-SYS-4290", "too many requests")
)
