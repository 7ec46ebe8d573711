package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/supsim/internal/core/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *domain.DomainError
		want int
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusBadRequest},
		{domain.ErrSnapshotNotFound, http.StatusNotFound},
		{domain.ErrSnapshotBusy, http.StatusConflict},
		{domain.ErrSnapshotPassword, http.StatusBadRequest},
		{domain.ErrCorruptArchive, http.StatusOK},
		{domain.ErrAddonNotFound, http.StatusBadRequest},
		{domain.ErrAddonState, http.StatusBadRequest},
		{domain.ErrBadRequest, http.StatusBadRequest},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrStorageError, http.StatusInternalServerError},
		{domain.ErrInternalServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.err.Code); got != tt.want {
				t.Errorf("ErrorCodeToHTTPStatus(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, domain.ErrCorruptArchive.WithDetails("truncated"))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "SUP-ARC-4220" {
		t.Errorf("X-Error-Code = %q", got)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result != "Bad snapshot" || resp.Details != "truncated" {
		t.Errorf("response = %+v", resp)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("disk on fire"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != domain.ErrInternalServer.Code {
		t.Errorf("X-Error-Code = %q", got)
	}
}

func TestCredential(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := Credential(req); got != "" {
		t.Errorf("empty request credential = %q", got)
	}

	req.Header.Set("Authorization", "Bearer from-bearer")
	if got := Credential(req); got != "from-bearer" {
		t.Errorf("bearer credential = %q", got)
	}

	req.Header.Set(HeaderToken, "from-header")
	if got := Credential(req); got != "from-header" {
		t.Errorf("header credential = %q", got)
	}
}
