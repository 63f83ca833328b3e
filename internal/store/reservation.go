package store

import (
	"context"
	"time"

	"rental-marketplace-api/internal/model"
)

func (s *Store) CreateReservation(ctx context.Context, r *model.Reservation) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO reservations (id, listing_id, user_id, start_date, end_date, total_price)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		r.ID, r.ListingID, r.UserID, r.StartDate, r.EndDate, r.TotalPrice,
	).Scan(&r.CreatedAt)
	return translate(err)
}

// HasOverlappingReservation is the app-level overlap check; the exclusion
// constraint on reservations remains the authority under concurrency.
func (s *Store) HasOverlappingReservation(ctx context.Context, listingID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE listing_id = $1
			  AND start_date <= $3
			  AND end_date >= $2
		)`, listingID, start, end,
	).Scan(&exists)
	return exists, translate(err)
}

func (s *Store) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	r := &model.Reservation{Listing: &model.Listing{}}
	err := s.pool.QueryRow(ctx,
		`SELECT r.id, r.listing_id, r.user_id, r.start_date, r.end_date, r.total_price, r.created_at,
		        l.id, l.user_id, l.make, l.model, l.trim, l.city, l.state, l.category, l.image_url, l.price, l.created_at
		 FROM reservations r
		 JOIN listings l ON l.id = r.listing_id
		 WHERE r.id = $1`, id,
	).Scan(
		&r.ID, &r.ListingID, &r.UserID, &r.StartDate, &r.EndDate, &r.TotalPrice, &r.CreatedAt,
		&r.Listing.ID, &r.Listing.UserID, &r.Listing.Make, &r.Listing.Model, &r.Listing.Trim,
		&r.Listing.City, &r.Listing.State, &r.Listing.Category, &r.Listing.ImageURL,
		&r.Listing.Price, &r.Listing.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// ListReservationsForListing returns a listing's reservations newest-first.
func (s *Store) ListReservationsForListing(ctx context.Context, listingID string) ([]model.Reservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, listing_id, user_id, start_date, end_date, total_price, created_at
		 FROM reservations
		 WHERE listing_id = $1
		 ORDER BY created_at DESC`, listingID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.ListingID, &r.UserID, &r.StartDate, &r.EndDate, &r.TotalPrice, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListReservationsByRenter returns the user's trips newest-first, each
// carrying its parent listing.
func (s *Store) ListReservationsByRenter(ctx context.Context, userID string) ([]model.Reservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.listing_id, r.user_id, r.start_date, r.end_date, r.total_price, r.created_at,
		        l.id, l.user_id, l.make, l.model, l.trim, l.city, l.state, l.category, l.image_url, l.price, l.created_at
		 FROM reservations r
		 JOIN listings l ON l.id = r.listing_id
		 WHERE r.user_id = $1
		 ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r := model.Reservation{Listing: &model.Listing{}}
		if err := rows.Scan(
			&r.ID, &r.ListingID, &r.UserID, &r.StartDate, &r.EndDate, &r.TotalPrice, &r.CreatedAt,
			&r.Listing.ID, &r.Listing.UserID, &r.Listing.Make, &r.Listing.Model, &r.Listing.Trim,
			&r.Listing.City, &r.Listing.State, &r.Listing.Category, &r.Listing.ImageURL,
			&r.Listing.Price, &r.Listing.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
