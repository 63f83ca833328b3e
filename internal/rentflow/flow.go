package rentflow

import (
	"context"

	"rental-marketplace-api/internal/booking"
	"rental-marketplace-api/internal/model"
)

// State is the submission flow's explicit lifecycle. Succeeded and Failed
// are settled states; the next date-range change returns the flow to Idle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// Notifier surfaces user-facing notifications (toasts in a UI).
type Notifier interface {
	Success(msg string)
	Error(msg string)
	// LoginRequired is raised when an unauthenticated user tries to
	// reserve; the caller is expected to present a login prompt.
	LoginRequired()
}

// Navigator performs view navigation after a successful reservation.
type Navigator interface {
	NavigateTo(path string)
}

type reservationAPI interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*model.Reservation, error)
}

// Flow drives a reservation for one listing: it tracks the selected date
// range, keeps the total price in sync with it, and submits the booking.
// It is single-flighted by convention: callers disable the trigger while
// Loading reports true.
type Flow struct {
	api       reservationAPI
	notifier  Notifier
	navigator Navigator
	userID    string // empty when unauthenticated
	listing   model.Listing

	state     State
	dateRange booking.DateRange
	total     int
	loading   bool
}

func NewFlow(api reservationAPI, notifier Notifier, navigator Navigator, userID string, listing model.Listing) *Flow {
	return &Flow{
		api:       api,
		notifier:  notifier,
		navigator: navigator,
		userID:    userID,
		listing:   listing,
		total:     listing.Price,
	}
}

func (f *Flow) State() State                 { return f.state }
func (f *Flow) Loading() bool                { return f.loading }
func (f *Flow) DateRange() booking.DateRange { return f.dateRange }
func (f *Flow) TotalPrice() int              { return f.total }

// SetDateRange updates the selection and recomputes the total immediately.
// It also settles a Succeeded/Failed flow back to Idle.
func (f *Flow) SetDateRange(r booking.DateRange) {
	if f.state == StateSucceeded || f.state == StateFailed {
		f.state = StateIdle
	}
	f.dateRange = r
	f.total = booking.TotalPrice(r, f.listing.Price)
}

// Submit creates the reservation for the current selection. Without an
// authenticated user it raises LoginRequired and never issues a request.
// On success the selection resets and the user is sent to their trips; on
// failure the selection is preserved for a retry. The loading flag clears
// on every settle path.
func (f *Flow) Submit(ctx context.Context) {
	if f.userID == "" {
		f.notifier.LoginRequired()
		return
	}
	if f.state == StateSubmitting {
		return
	}

	f.state = StateSubmitting
	f.loading = true
	defer func() { f.loading = false }()

	_, err := f.api.CreateReservation(ctx, CreateReservationRequest{
		ListingID:  f.listing.ID,
		StartDate:  f.dateRange.Start,
		EndDate:    f.dateRange.End,
		TotalPrice: f.total,
	})
	if err != nil {
		f.notifier.Error("Something went wrong.")
		f.state = StateFailed
		return
	}

	f.notifier.Success("Listing reserved!")
	f.dateRange = booking.DateRange{}
	f.total = f.listing.Price
	f.navigator.NavigateTo("/trips")
	f.state = StateSucceeded
}
