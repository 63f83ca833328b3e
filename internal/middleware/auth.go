package middleware

import (
	"context"
	"net/http"
	"strings"

	"rental-marketplace-api/internal/auth"
)

type ctxKey string

const userIDKey ctxKey = "uid"

// UserID returns the authenticated user id from the request context, or ""
// when the request carried no valid token.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// WithUserID is for tests that need an authenticated context without
// minting a token.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// Identity resolves the caller's identity from the Authorization header or
// the access_token cookie and attaches it to the context. Requests without
// a valid token pass through anonymously; each handler decides whether an
// identity is required.
func Identity(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			if c, err := r.Cookie("access_token"); err == nil {
				raw = c.Value
			}
		}
		if raw != "" {
			if claims, err := auth.ParseAccessToken(raw, secret); err == nil {
				r = r.WithContext(WithUserID(r.Context(), claims.UserID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
