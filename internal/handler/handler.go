// Package handler exposes the marketplace REST surface.
package handler

import (
	"log/slog"
	"net/http"

	"rental-marketplace-api/internal/middleware"
	"rental-marketplace-api/internal/store"
)

type Handler struct {
	store  *store.Store
	secret string
	logger *slog.Logger
}

func New(st *store.Store, secret string, logger *slog.Logger) *Handler {
	return &Handler{store: st, secret: secret, logger: logger}
}

// Routes wires the REST surface. The credential endpoints sit behind the
// per-IP limiter; identity resolution and request logging wrap the whole
// mux in main.
func (h *Handler) Routes(rl *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", rl.Limit(http.HandlerFunc(h.handleRegister)))
	mux.Handle("POST /api/auth/login", rl.Limit(http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST /api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/current-user", h.handleCurrentUser)

	mux.HandleFunc("GET /api/listings", h.handleListListings)
	mux.HandleFunc("POST /api/listings", h.handleCreateListing)
	mux.HandleFunc("GET /api/listings/{id}", h.handleGetListing)
	mux.HandleFunc("DELETE /api/listings/{id}", h.handleDeleteListing)
	mux.HandleFunc("GET /api/listings/{id}/reservations", h.handleListingReservations)
	mux.HandleFunc("PUT /api/listings/{id}/favorite", h.handleAddFavorite)
	mux.HandleFunc("DELETE /api/listings/{id}/favorite", h.handleRemoveFavorite)

	mux.HandleFunc("GET /api/my/listings", h.handleMyListings)

	mux.HandleFunc("POST /api/reservations", h.handleCreateReservation)
	mux.HandleFunc("DELETE /api/reservations/{id}", h.handleDeleteReservation)
	mux.HandleFunc("GET /api/trips", h.handleTrips)

	return mux
}
