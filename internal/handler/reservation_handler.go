package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rental-marketplace-api/internal/booking"
	"rental-marketplace-api/internal/model"
	"rental-marketplace-api/internal/store"
)

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		ListingID  string    `json:"listingId"`
		StartDate  time.Time `json:"startDate"`
		EndDate    time.Time `json:"endDate"`
		TotalPrice int       `json:"totalPrice"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if _, err := uuid.Parse(body.ListingID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	if body.StartDate.IsZero() || body.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "dates required")
		return
	}

	start := booking.Day(body.StartDate)
	end := booking.Day(body.EndDate)
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return
	}
	if start.Before(booking.Day(time.Now())) {
		writeError(w, http.StatusBadRequest, "cannot book in the past")
		return
	}

	l, err := h.store.GetListing(r.Context(), body.ListingID)
	if err != nil {
		h.notFoundOr(w, r, err, "listing not found")
		return
	}

	// the server is the authority on price; reject a stale client total
	total := booking.TotalPrice(booking.DateRange{Start: start, End: end}, l.Price)
	if body.TotalPrice != total {
		writeError(w, http.StatusBadRequest, "total price does not match the selected range")
		return
	}

	// app-level overlap check
	if taken, err := h.store.HasOverlappingReservation(r.Context(), l.ID, start, end); err != nil {
		h.serverError(w, r, err)
		return
	} else if taken {
		writeError(w, http.StatusConflict, "dates conflict with an existing reservation")
		return
	}

	res := &model.Reservation{
		ID:         uuid.New().String(),
		ListingID:  l.ID,
		UserID:     uid,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: total,
	}
	if err := h.store.CreateReservation(r.Context(), res); err != nil {
		// db exclusion constraint caught a race
		if errors.Is(err, store.ErrOverlap) {
			writeError(w, http.StatusConflict, "dates conflict with an existing reservation")
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleTrips(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	trips, err := h.store.ListReservationsByRenter(r.Context(), uid)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if trips == nil {
		trips = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, trips)
}

// handleDeleteReservation cancels a reservation. Allowed for the renter who
// made it and for the owner of the listing it books.
func (h *Handler) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	res, err := h.store.GetReservation(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, r, err, "reservation not found")
		return
	}
	if res.UserID != uid && res.Listing.UserID != uid {
		writeError(w, http.StatusForbidden, "not your reservation")
		return
	}

	if err := h.store.DeleteReservation(r.Context(), id); err != nil {
		h.notFoundOr(w, r, err, "reservation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
