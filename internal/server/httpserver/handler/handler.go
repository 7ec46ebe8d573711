package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/telemetry/logger"
)

// Header names carrying the shared-secret credential.
const (
	HeaderToken         = "X-Supervisor-Token"
	HeaderAuthorization = "Authorization"
)

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	sup     *service.Supervisor
	metrics http.Handler
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a Handler serving sup. A nil metrics handler leaves
// /metrics unrouted.
func New(sup *service.Supervisor, metrics http.Handler, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		sup:     sup,
		metrics: metrics,
		logger:  log,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	// Snapshots
	h.mux.HandleFunc("POST /snapshots/new/full", h.handleCreateFull)
	h.mux.HandleFunc("GET /snapshots/new/full", h.handleCreateFull)
	h.mux.HandleFunc("POST /snapshots/new/partial", h.handleCreatePartial)
	h.mux.HandleFunc("POST /snapshots/new/upload", h.handleUpload)
	h.mux.HandleFunc("GET /snapshots/new/upload", h.handleUpload)
	h.mux.HandleFunc("GET /snapshots", h.handleListSnapshots)
	h.mux.HandleFunc("GET /snapshots/{slug}/info", h.handleSnapshotInfo)
	h.mux.HandleFunc("GET /snapshots/{slug}/download", h.handleDownload)
	h.mux.HandleFunc("POST /snapshots/{slug}/remove", h.handleRemove)
	h.mux.HandleFunc("POST /snapshots/{slug}/restore/full", h.handleRestore)
	h.mux.HandleFunc("POST /snapshots/{slug}/restore/partial", h.handleRestore)

	// Add-ons
	h.mux.HandleFunc("GET /addons/self/info", h.handleSelfInfo)
	h.mux.HandleFunc("GET /addons/{slug}/info", h.handleAddonInfo)
	h.mux.HandleFunc("POST /addons/{slug}/start", h.handleAddonStart)
	h.mux.HandleFunc("POST /addons/{slug}/stop", h.handleAddonStop)
	h.mux.HandleFunc("POST /addons/{slug}/options", h.handleAddonOptions)

	// Supervisor
	h.mux.HandleFunc("POST /auth", h.handleLogin)
	h.mux.HandleFunc("GET /auth", h.handleLogin)
	h.mux.HandleFunc("GET /info", h.handleInfo)
	h.mux.HandleFunc("GET /core/info", h.handleCoreInfo)
	h.mux.HandleFunc("GET /supervisor/info", h.handleSupervisorInfo)
	h.mux.HandleFunc("GET /supervisor/logs", h.handleLogs(service.SupervisorLogs))
	h.mux.HandleFunc("GET /core/logs", h.handleLogs(service.CoreLogs))

	// Home Assistant
	h.mux.HandleFunc("POST /core/api/events/{name}", h.handleFireEvent)
	h.mux.HandleFunc("POST /core/api/states/{entity}", h.handleSetState)
	h.mux.HandleFunc("POST /core/api/services/persistent_notification/create", h.handleCreateNotification)
	h.mux.HandleFunc("POST /core/api/services/persistent_notification/dismiss", h.handleDismissNotification)

	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}
}

// Credential extracts the shared secret from X-Supervisor-Token or, failing
// that, from an Authorization bearer header.
func Credential(r *http.Request) string {
	if v := r.Header.Get(HeaderToken); v != "" {
		return v
	}
	if v, ok := strings.CutPrefix(r.Header.Get(HeaderAuthorization), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// writeJSON writes a success envelope around data.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(Response{Result: ResultOK, Data: data}); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeEmpty writes the empty 200 the Home Assistant API answers with.
func writeEmpty(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// WriteError writes an error envelope for err. Errors that are not
// DomainErrors are reported as internal errors.
func WriteError(w http.ResponseWriter, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternalServer
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(ErrorCodeToHTTPStatus(de.Code))
	json.NewEncoder(w).Encode(Response{Result: de.Message, Details: de.Details})
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsDomainError(err, "") {
		logger.L(r.Context()).Error("internal error", "path", r.URL.Path, "error", err)
	}
	WriteError(w, err)
}

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes. Archive
// errors are answered inside a normal 200 envelope.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasPrefix(code, "SUP-ARC-"):
		return http.StatusOK
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readBody reads the whole request body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, domain.ErrBadRequest.WithDetails("unreadable body").WithCause(err)
	}
	return body, nil
}
