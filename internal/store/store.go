package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound marks a missing row; handlers map it to 404.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a unique violation (e.g. registered email).
	ErrDuplicate = errors.New("already exists")
	// ErrOverlap marks a reservation rejected by the listing's
	// no-overlap exclusion constraint.
	ErrOverlap = errors.New("date range overlaps an existing reservation")
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// translate converts driver-level errors into the store's sentinel
// vocabulary so handlers never inspect SQLSTATEs themselves.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrDuplicate
		case "23P01": // exclusion_violation
			return ErrOverlap
		}
	}
	return err
}
