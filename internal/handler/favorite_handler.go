package handler

import "net/http"

func (h *Handler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetListing(r.Context(), id); err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}
	if err := h.store.AddFavorite(r.Context(), uid, id); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveFavorite(r.Context(), uid, id); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
