package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

func (h *Handler) handleCreateFull(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.SnapshotFull)
}

func (h *Handler) handleCreatePartial(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.SnapshotPartial)
}

// create hands the unread body on; the service reads it only once the
// gate admits the request and the credential checks out.
func (h *Handler) create(w http.ResponseWriter, r *http.Request, kind domain.SnapshotType) {
	var body io.Reader
	if r.Body != nil {
		body = r.Body
	}
	snapshot, err := h.sup.Snapshots.Create(r.Context(), &service.CreateRequest{
		Type:       kind,
		Credential: Credential(r),
		Body:       body,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, CreateSnapshotResponse{Slug: snapshot.Slug})
}

// handleUpload stores the first part of a multipart body. A body that is
// not multipart is taken as the archive itself.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := uploadedArchive(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	snapshot, err := h.sup.Snapshots.Upload(r.Context(), data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, CreateSnapshotResponse{Slug: snapshot.Slug})
}

func uploadedArchive(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return readBody(r)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, domain.ErrBadRequest.WithDetails("invalid multipart body").WithCause(err)
	}
	part, err := reader.NextPart()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrCorruptArchive.WithDetails("empty upload")
	}
	if err != nil {
		return nil, domain.ErrBadRequest.WithDetails("invalid multipart body").WithCause(err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, domain.ErrBadRequest.WithDetails("unreadable upload").WithCause(err)
	}
	return data, nil
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.sup.Snapshots.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, ListSnapshotsResponse{Snapshots: list})
}

func (h *Handler) handleSnapshotInfo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sup.Snapshots.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, snapshot)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	data, err := h.sup.Snapshots.Download(r.Context(), slug)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/tar")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+slug+`.tar"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.sup.Snapshots.Delete(r.Context(), r.PathValue("slug")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, "deleted")
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	var req RestoreRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("invalid json body"))
			return
		}
	}

	if err := h.sup.Snapshots.Restore(r.Context(), r.PathValue("slug"), req.Password); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, nil)
}
