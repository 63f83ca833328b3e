package rentflow

import (
	"fmt"

	"rental-marketplace-api/internal/booking"
	"rental-marketplace-api/internal/model"
)

const cardDateLayout = "Jan 2, 2006"

// Action is a contextual card button (cancel, unlist, view reservations).
type Action struct {
	ID      string
	Label   string
	Handler func(id string)
}

// Card is the view-model behind a listing/reservation tile. Opening the
// card navigates to the listing detail; either action consumes its click
// instead of propagating it to the card.
type Card struct {
	Listing     model.Listing
	Reservation *model.Reservation
	Primary     *Action
	Secondary   *Action
	Disabled    bool
	Open        func(listingID string)
}

func NewCard(listing model.Listing, reservation *model.Reservation) Card {
	return Card{Listing: listing, Reservation: reservation}
}

// Price shows the reservation total when the card represents a booking,
// otherwise the listing's daily rate.
func (c Card) Price() int {
	if c.Reservation != nil {
		return c.Reservation.TotalPrice
	}
	return c.Listing.Price
}

// Subtitle is the formatted reservation range, or the listing category when
// no reservation is attached. A single-day booking shows one date.
func (c Card) Subtitle() string {
	if c.Reservation == nil {
		return c.Listing.Category
	}
	start := booking.Day(c.Reservation.StartDate)
	end := booking.Day(c.Reservation.EndDate)
	if end.After(start) {
		return fmt.Sprintf("%s - %s", start.Format(cardDateLayout), end.Format(cardDateLayout))
	}
	return start.Format(cardDateLayout)
}

// Click opens the card's listing detail.
func (c Card) Click() {
	if c.Open != nil {
		c.Open(c.Listing.ID)
	}
}

// ClickPrimary dispatches the primary action and reports whether the click
// was handled. A handled click never reaches Open.
func (c Card) ClickPrimary() bool {
	return c.dispatch(c.Primary)
}

func (c Card) ClickSecondary() bool {
	return c.dispatch(c.Secondary)
}

func (c Card) dispatch(a *Action) bool {
	if a == nil || a.Handler == nil {
		return false
	}
	if c.Disabled || a.ID == "" {
		// click is consumed, just ignored while disabled
		return true
	}
	a.Handler(a.ID)
	return true
}
