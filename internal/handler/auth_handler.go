package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"rental-marketplace-api/internal/auth"
	"rental-marketplace-api/internal/middleware"
	"rental-marketplace-api/internal/model"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if body.Email == "" || body.Password == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "all fields required")
		return
	}
	if len(body.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password too short")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        body.Email,
		PasswordHash: hash,
		Name:         body.Name,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		writeError(w, http.StatusConflict, "registration failed")
		return
	}

	if err := h.issueSession(w, r, u.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": u.ID})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), body.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.issueSession(w, r, u.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": u.ID, "name": u.Name})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value == "" {
		writeError(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(c.Value))
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	rawRefresh, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if _, err := h.store.RotateRefreshToken(r.Context(), rt.ID, rt.UserID, newHash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		h.serverError(w, r, err)
		return
	}

	access, err := auth.MakeAccessToken(rt.UserID, h.secret)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	setAuthCookies(w, access, rawRefresh)
	writeJSON(w, http.StatusOK, map[string]string{"userId": rt.UserID})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())
	if uid == "" {
		// fall back to the refresh cookie so an expired access token
		// can still end the session
		if c, err := r.Cookie("refresh_token"); err == nil && c.Value != "" {
			if rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(c.Value)); err == nil {
				uid = rt.UserID
			}
		}
	}
	if uid != "" {
		if err := h.store.RevokeAllRefreshTokens(r.Context(), uid); err != nil {
			h.serverError(w, r, err)
			return
		}
	}
	clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	u, err := h.store.UserByID(r.Context(), uid)
	if err != nil {
		h.notFoundOr(w, r, err, "user not found")
		return
	}
	favs, err := h.store.ListFavoriteIDs(r.Context(), uid)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		*model.User
		FavoriteIDs []string `json:"favoriteIds"`
	}{u, favs})
}

// issueSession mints the access token, persists a refresh token, and sets
// both cookies.
func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, userID string) error {
	access, err := auth.MakeAccessToken(userID, h.secret)
	if err != nil {
		return err
	}
	rawRefresh, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return err
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), userID, hash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		return err
	}
	setAuthCookies(w, access, rawRefresh)
	return nil
}

func setAuthCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name: "access_token", Value: access,
		Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode,
		MaxAge: int(auth.AccessTokenTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: refresh,
		Path: "/api/auth", HttpOnly: true, SameSite: http.SameSiteLaxMode,
		MaxAge: int(auth.RefreshTokenTTL.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/api/auth", HttpOnly: true, MaxAge: -1})
}
