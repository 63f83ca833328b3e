package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Listing is a rentable vehicle record owned by a user.
type Listing struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Trim         string        `json:"trim"`
	City         string        `json:"city"`
	State        string        `json:"state"`
	Category     string        `json:"category"`
	ImageURL     string        `json:"imageSrc"`
	Price        int           `json:"price"`
	CreatedAt    time.Time     `json:"createdAt"`
	Reservations []Reservation `json:"reservations,omitempty"`
}

// Reservation books a listing for an inclusive date range. StartDate and
// EndDate are calendar days (UTC midnight); TotalPrice is persisted
// redundantly alongside the range it was derived from.
type Reservation struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	UserID     string    `json:"userId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TotalPrice int       `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
	Listing    *Listing  `json:"listing,omitempty"`
}

type Favorite struct {
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
