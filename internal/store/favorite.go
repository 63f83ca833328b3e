package store

import "context"

func (s *Store) AddFavorite(ctx context.Context, userID, listingID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, listing_id) VALUES ($1,$2)
		 ON CONFLICT DO NOTHING`, userID, listingID)
	return translate(err)
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	return translate(err)
}

func (s *Store) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT listing_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
