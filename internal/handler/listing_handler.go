package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"rental-marketplace-api/internal/booking"
	"rental-marketplace-api/internal/model"
	"rental-marketplace-api/internal/store"
)

func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ListingFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		State:    q.Get("state"),
	}

	listings, err := h.store.ListListings(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Make     string `json:"make"`
		Model    string `json:"model"`
		Trim     string `json:"trim"`
		City     string `json:"city"`
		State    string `json:"state"`
		Category string `json:"category"`
		ImageURL string `json:"imageSrc"`
		Price    int    `json:"price"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if body.Make == "" || body.Model == "" || body.City == "" || body.State == "" || body.Category == "" {
		writeError(w, http.StatusBadRequest, "make, model, city, state and category required")
		return
	}
	if body.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	l := &model.Listing{
		ID:       uuid.New().String(),
		UserID:   uid,
		Make:     body.Make,
		Model:    body.Model,
		Trim:     body.Trim,
		City:     body.City,
		State:    body.State,
		Category: body.Category,
		ImageURL: body.ImageURL,
		Price:    body.Price,
	}
	if err := h.store.CreateListing(r.Context(), l); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}
	reservations, err := h.store.ListReservationsForListing(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	l.Reservations = reservations

	disabled := booking.BookedDates(reservations)
	if disabled == nil {
		disabled = []time.Time{}
	}
	writeJSON(w, http.StatusOK, struct {
		*model.Listing
		DisabledDates []time.Time `json:"disabledDates"`
	}{l, disabled})
}

func (h *Handler) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}
	if l.UserID != uid {
		writeError(w, http.StatusForbidden, "not your listing")
		return
	}

	if err := h.store.DeleteListing(r.Context(), id); err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMyListings returns the caller's own listings newest-first, each
// with its reservations, for the "your cars" view.
func (h *Handler) handleMyListings(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	listings, err := h.store.ListListingsByOwner(r.Context(), uid)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// handleListingReservations is the owner's view of bookings made on a
// listing, newest-first, each including the parent listing.
func (h *Handler) handleListingReservations(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}
	if l.UserID != uid {
		writeError(w, http.StatusForbidden, "not your listing")
		return
	}

	reservations, err := h.store.ListReservationsForListing(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	for i := range reservations {
		reservations[i].Listing = l
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, reservations)
}
