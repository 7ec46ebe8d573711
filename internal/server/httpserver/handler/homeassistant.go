package handler

import "net/http"

func (h *Handler) handleFireEvent(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err == nil {
		err = h.sup.HomeAssistant.FireEvent(r.Context(), r.PathValue("name"), body)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeEmpty(w)
}

func (h *Handler) handleSetState(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err == nil {
		err = h.sup.HomeAssistant.SetState(r.Context(), r.PathValue("entity"), body)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeEmpty(w)
}

func (h *Handler) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err == nil {
		err = h.sup.HomeAssistant.CreateNotification(r.Context(), body)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeEmpty(w)
}

func (h *Handler) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	h.sup.HomeAssistant.DismissNotification(r.Context())
	writeEmpty(w)
}
