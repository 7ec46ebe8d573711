package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/supsim/internal/core/domain"
)

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	var req LoginRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("invalid json body"))
			return
		}
	}

	if err := h.sup.Auth.Login(req.Username, req.Password); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, nil)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.sup.Info())
}

func (h *Handler) handleCoreInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.sup.CoreInfo())
}

func (h *Handler) handleSupervisorInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.sup.SupervisorInfo(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, info)
}

func (h *Handler) handleLogs(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(text))
	}
}
