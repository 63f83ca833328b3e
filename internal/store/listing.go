package store

import (
	"context"
	"fmt"

	"rental-marketplace-api/internal/model"
)

const listingCols = `id, user_id, make, model, trim, city, state, category, image_url, price, created_at`

func scanListing(row interface{ Scan(...any) error }, l *model.Listing) error {
	return row.Scan(&l.ID, &l.UserID, &l.Make, &l.Model, &l.Trim,
		&l.City, &l.State, &l.Category, &l.ImageURL, &l.Price, &l.CreatedAt)
}

func (s *Store) CreateListing(ctx context.Context, l *model.Listing) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO listings (id, user_id, make, model, trim, city, state, category, image_url, price)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING created_at`,
		l.ID, l.UserID, l.Make, l.Model, l.Trim, l.City, l.State, l.Category, l.ImageURL, l.Price,
	).Scan(&l.CreatedAt)
	return translate(err)
}

func (s *Store) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l := &model.Listing{}
	err := scanListing(s.pool.QueryRow(ctx,
		`SELECT `+listingCols+` FROM listings WHERE id = $1`, id), l)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// ListingFilter narrows the public browse query. Empty fields match all.
type ListingFilter struct {
	Category string
	City     string
	State    string
}

func (s *Store) ListListings(ctx context.Context, f ListingFilter) ([]model.Listing, error) {
	q := `SELECT ` + listingCols + ` FROM listings WHERE 1=1`
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.City != "" {
		args = append(args, f.City)
		q += fmt.Sprintf(` AND city = $%d`, len(args))
	}
	if f.State != "" {
		args = append(args, f.State)
		q += fmt.Sprintf(` AND state = $%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListListingsByOwner returns the user's listings newest-first, each with
// its reservations attached.
func (s *Store) ListListingsByOwner(ctx context.Context, userID string) ([]model.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingCols+` FROM listings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var l model.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		res, err := s.ListReservationsForListing(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Reservations = res
	}
	return out, nil
}

func (s *Store) DeleteListing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
