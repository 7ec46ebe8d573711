package handler

import (
	"net/http"

	"github.com/yndnr/supsim/internal/core/domain"
)

func (h *Handler) handleSelfInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.sup.Addons.SelfInfo())
}

func (h *Handler) handleAddonInfo(w http.ResponseWriter, r *http.Request) {
	addon, err := h.sup.Addons.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, addonInfo(addon))
}

func (h *Handler) handleAddonStart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sup.Addons.Start(r.Context(), r.PathValue("slug")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, nil)
}

func (h *Handler) handleAddonStop(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sup.Addons.Stop(r.Context(), r.PathValue("slug")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, nil)
}

func (h *Handler) handleAddonOptions(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.sup.Addons.UpdateOptions(r.Context(), r.PathValue("slug"), body); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, nil)
}

func addonInfo(a *domain.Addon) AddonInfoResponse {
	return AddonInfoResponse{Boot: a.Boot, Watchdog: a.Watchdog, State: a.State}
}
