package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"rental-marketplace-api/internal/auth"
	"rental-marketplace-api/internal/booking"
	"rental-marketplace-api/internal/db"
	"rental-marketplace-api/internal/handler"
	"rental-marketplace-api/internal/middleware"
	"rental-marketplace-api/internal/model"
	"rental-marketplace-api/internal/store"
)

func setup(t *testing.T) (http.Handler, string) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if dbURL == "" || secret == "" {
		t.Skip("DATABASE_URL or JWT_SECRET not set")
	}

	pool, err := db.Open(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	st := store.New(pool)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(st, secret, logger)
	rl := middleware.NewRateLimiter(1000, 1000)
	return middleware.Identity(secret, h.Routes(rl)), secret
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func registerUser(t *testing.T, h http.Handler, secret string) (userID, token string) {
	t.Helper()
	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := do(t, h, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Test User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	uid := body["userId"]
	tok, err := auth.MakeAccessToken(uid, secret)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return uid, tok
}

func createListing(t *testing.T, h http.Handler, token string, price int) model.Listing {
	t.Helper()
	rec := do(t, h, "POST", "/api/listings", token, map[string]any{
		"make": "Honda", "model": "Civic", "trim": "EX",
		"city": "Austin", "state": "TX", "category": "Sedan",
		"price": price,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing: %d %s", rec.Code, rec.Body.String())
	}
	return decode[model.Listing](t, rec)
}

func futureDay(daysFromNow int) time.Time {
	return booking.Day(time.Now().AddDate(0, 0, daysFromNow))
}

// ----- auth -----

func TestRegisterAndLogin(t *testing.T) {
	h, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := do(t, h, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Login User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}

	var hasAccess, hasRefresh bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" && c.HttpOnly {
			hasAccess = true
		}
		if c.Name == "refresh_token" && c.HttpOnly {
			hasRefresh = true
		}
	}
	if !hasAccess || !hasRefresh {
		t.Error("expected httponly access and refresh cookies")
	}

	rec = do(t, h, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "testpass123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	if body["name"] != "Login User" {
		t.Errorf("expected name 'Login User', got %q", body["name"])
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := setup(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"empty email", map[string]string{"email": "", "password": "testpass123", "name": "X"}},
		{"empty password", map[string]string{"email": "a@b.com", "password": "", "name": "X"}},
		{"short password", map[string]string{"email": "a@b.com", "password": "short", "name": "X"}},
		{"empty name", map[string]string{"email": "a@b.com", "password": "testpass123", "name": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	body := map[string]string{"email": email, "password": "testpass123", "name": "First"}
	if rec := do(t, h, "POST", "/api/auth/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/auth/register", "", body); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestLoginRejection(t *testing.T) {
	h, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := do(t, h, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "testpass123", "name": "X",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	rec = do(t, h, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec = do(t, h, "POST", "/api/auth/login", "", map[string]string{
		"email": "nobody@nowhere.com", "password": "testpass123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	h, secret := setup(t)
	uid, token := registerUser(t, h, secret)

	rec := do(t, h, "GET", "/api/current-user", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current-user: %d %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["id"] != uid {
		t.Errorf("id mismatch: %v", body["id"])
	}
	if _, ok := body["passwordHash"]; ok {
		t.Error("password hash leaked")
	}

	if rec := do(t, h, "GET", "/api/current-user", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	h, _ := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8])
	rec := do(t, h, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Refresh User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}
	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	if refresh == nil {
		t.Fatal("no refresh cookie")
	}

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rr.Code, rr.Body.String())
	}

	// the rotated-out token must be dead
	req = httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 reusing rotated token, got %d", rr.Code)
	}
}

// ----- listings -----

func TestCreateListingValidation(t *testing.T) {
	h, secret := setup(t)
	_, token := registerUser(t, h, secret)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing make", map[string]any{"model": "Civic", "city": "Austin", "state": "TX", "category": "Sedan", "price": 50}},
		{"zero price", map[string]any{"make": "Honda", "model": "Civic", "city": "Austin", "state": "TX", "category": "Sedan", "price": 0}},
		{"negative price", map[string]any{"make": "Honda", "model": "Civic", "city": "Austin", "state": "TX", "category": "Sedan", "price": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "POST", "/api/listings", token, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}

	if rec := do(t, h, "POST", "/api/listings", "", map[string]any{"make": "Honda"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestGetListing(t *testing.T) {
	h, secret := setup(t)
	_, token := registerUser(t, h, secret)
	l := createListing(t, h, token, 50)

	// public, no identity needed
	rec := do(t, h, "GET", "/api/listings/"+l.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get listing: %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["make"] != "Honda" {
		t.Errorf("make: %v", body["make"])
	}
	if disabled, ok := body["disabledDates"].([]any); !ok || len(disabled) != 0 {
		t.Errorf("expected empty disabledDates, got %v", body["disabledDates"])
	}

	if rec := do(t, h, "GET", "/api/listings/"+uuid.New().String(), "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown listing, got %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/listings/not-a-uuid", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestDeleteListingOwnership(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, strangerTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	if rec := do(t, h, "DELETE", "/api/listings/"+l.ID, strangerTok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", rec.Code)
	}
	// still there
	if rec := do(t, h, "GET", "/api/listings/"+l.ID, "", nil); rec.Code != http.StatusOK {
		t.Errorf("listing should survive a rejected delete, got %d", rec.Code)
	}

	if rec := do(t, h, "DELETE", "/api/listings/"+l.ID, ownerTok, nil); rec.Code != http.StatusNoContent {
		t.Errorf("owner delete: %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/listings/"+l.ID, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

// ----- reservations -----

func TestCreateReservation(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	start, end := futureDay(10), futureDay(12)
	rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
		"listingId": l.ID, "startDate": start, "endDate": end, "totalPrice": 150,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create reservation: %d %s", rec.Code, rec.Body.String())
	}
	res := decode[model.Reservation](t, rec)
	if res.TotalPrice != 150 {
		t.Errorf("total: %d", res.TotalPrice)
	}

	// the booked span shows up as disabled dates on the listing
	rec = do(t, h, "GET", "/api/listings/"+l.ID, "", nil)
	body := decode[map[string]any](t, rec)
	if disabled, ok := body["disabledDates"].([]any); !ok || len(disabled) != 3 {
		t.Errorf("expected 3 disabled dates, got %v", body["disabledDates"])
	}
}

func TestCreateReservationValidation(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad listing id", map[string]any{"listingId": "nope", "startDate": futureDay(1), "endDate": futureDay(2), "totalPrice": 100}, http.StatusBadRequest},
		{"missing dates", map[string]any{"listingId": l.ID, "totalPrice": 50}, http.StatusBadRequest},
		{"end before start", map[string]any{"listingId": l.ID, "startDate": futureDay(5), "endDate": futureDay(3), "totalPrice": 50}, http.StatusBadRequest},
		{"past booking", map[string]any{"listingId": l.ID, "startDate": futureDay(-3), "endDate": futureDay(-1), "totalPrice": 150}, http.StatusBadRequest},
		{"price mismatch", map[string]any{"listingId": l.ID, "startDate": futureDay(1), "endDate": futureDay(3), "totalPrice": 999}, http.StatusBadRequest},
		{"unknown listing", map[string]any{"listingId": uuid.New().String(), "startDate": futureDay(1), "endDate": futureDay(3), "totalPrice": 150}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "POST", "/api/reservations", renterTok, tt.body); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	if rec := do(t, h, "POST", "/api/reservations", "", map[string]any{"listingId": l.ID}); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestReservationOverlap(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	_, otherTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(20), "endDate": futureDay(24), "totalPrice": 250,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first reservation: %d %s", rec.Code, rec.Body.String())
	}

	// same span
	rec = do(t, h, "POST", "/api/reservations", otherTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(20), "endDate": futureDay(24), "totalPrice": 250,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for exact overlap, got %d", rec.Code)
	}

	// shared endpoint counts as overlap on inclusive ranges
	rec = do(t, h, "POST", "/api/reservations", otherTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(24), "endDate": futureDay(26), "totalPrice": 150,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for shared endpoint, got %d", rec.Code)
	}

	// next day is free
	rec = do(t, h, "POST", "/api/reservations", otherTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(25), "endDate": futureDay(26), "totalPrice": 100,
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("adjacent range should book: %d %s", rec.Code, rec.Body.String())
	}
}

func TestTrips(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(30), "endDate": futureDay(31), "totalPrice": 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: %d", rec.Code)
	}

	rec = do(t, h, "GET", "/api/trips", renterTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trips: %d", rec.Code)
	}
	trips := decode[[]model.Reservation](t, rec)
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	if trips[0].Listing == nil || trips[0].Listing.ID != l.ID {
		t.Error("trip should include its listing")
	}

	// the owner has no trips of their own
	rec = do(t, h, "GET", "/api/trips", ownerTok, nil)
	if got := decode[[]model.Reservation](t, rec); len(got) != 0 {
		t.Errorf("owner should have no trips, got %d", len(got))
	}
}

func TestListingReservationsOwnerOnly(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	_, strangerTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(40), "endDate": futureDay(41), "totalPrice": 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: %d", rec.Code)
	}

	rec = do(t, h, "GET", "/api/listings/"+l.ID+"/reservations", ownerTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner list: %d", rec.Code)
	}
	if got := decode[[]model.Reservation](t, rec); len(got) != 1 || got[0].Listing == nil {
		t.Errorf("expected 1 reservation with listing include, got %+v", got)
	}

	if rec := do(t, h, "GET", "/api/listings/"+l.ID+"/reservations", strangerTok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for stranger, got %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/listings/"+l.ID+"/reservations", renterTok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for renter (not owner), got %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/listings/"+l.ID+"/reservations", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestDeleteReservationAuthorization(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)
	_, strangerTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	reserve := func(start, end int, total int) model.Reservation {
		rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
			"listingId": l.ID, "startDate": futureDay(start), "endDate": futureDay(end), "totalPrice": total,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("reserve: %d %s", rec.Code, rec.Body.String())
		}
		return decode[model.Reservation](t, rec)
	}

	first := reserve(50, 51, 100)
	if rec := do(t, h, "DELETE", "/api/reservations/"+first.ID, strangerTok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for stranger, got %d", rec.Code)
	}
	if rec := do(t, h, "DELETE", "/api/reservations/"+first.ID, renterTok, nil); rec.Code != http.StatusNoContent {
		t.Errorf("renter cancel: %d", rec.Code)
	}

	second := reserve(60, 61, 100)
	if rec := do(t, h, "DELETE", "/api/reservations/"+second.ID, ownerTok, nil); rec.Code != http.StatusNoContent {
		t.Errorf("owner cancel: %d", rec.Code)
	}
}

func TestMyListings(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, renterTok := registerUser(t, h, secret)

	l := createListing(t, h, ownerTok, 50)
	rec := do(t, h, "POST", "/api/reservations", renterTok, map[string]any{
		"listingId": l.ID, "startDate": futureDay(70), "endDate": futureDay(71), "totalPrice": 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: %d", rec.Code)
	}

	rec = do(t, h, "GET", "/api/my/listings", ownerTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my listings: %d", rec.Code)
	}
	listings := decode[[]model.Listing](t, rec)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if len(listings[0].Reservations) != 1 {
		t.Errorf("expected reservations include, got %d", len(listings[0].Reservations))
	}

	// the renter owns nothing
	rec = do(t, h, "GET", "/api/my/listings", renterTok, nil)
	if got := decode[[]model.Listing](t, rec); len(got) != 0 {
		t.Errorf("renter should own no listings, got %d", len(got))
	}
	if rec := do(t, h, "GET", "/api/my/listings", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}

// ----- favorites -----

func TestFavorites(t *testing.T) {
	h, secret := setup(t)
	_, ownerTok := registerUser(t, h, secret)
	_, userTok := registerUser(t, h, secret)
	l := createListing(t, h, ownerTok, 50)

	if rec := do(t, h, "PUT", "/api/listings/"+l.ID+"/favorite", userTok, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("favorite: %d", rec.Code)
	}
	// idempotent
	if rec := do(t, h, "PUT", "/api/listings/"+l.ID+"/favorite", userTok, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("re-favorite: %d", rec.Code)
	}

	rec := do(t, h, "GET", "/api/current-user", userTok, nil)
	body := decode[map[string]any](t, rec)
	favs, _ := body["favoriteIds"].([]any)
	if len(favs) != 1 || favs[0] != l.ID {
		t.Errorf("expected favorite %s, got %v", l.ID, favs)
	}

	if rec := do(t, h, "DELETE", "/api/listings/"+l.ID+"/favorite", userTok, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("unfavorite: %d", rec.Code)
	}
	rec = do(t, h, "GET", "/api/current-user", userTok, nil)
	body = decode[map[string]any](t, rec)
	if favs, _ := body["favoriteIds"].([]any); len(favs) != 0 {
		t.Errorf("expected no favorites, got %v", favs)
	}
}
