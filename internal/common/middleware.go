package common

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	ContextUserID      contextKey = "user_id"
	ContextDisplayName contextKey = "display_name"
)

// AuthMiddleware enforces a Bearer JWT on every request and injects the
// caller's identity into the request context. Mutating handlers must use
// UserIDFrom and treat a missing identity as "not authenticated".
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		// header = Bearer <token>
		parts := strings.Fields(header)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid auth header", http.StatusUnauthorized)
			return
		}

		claims, err := ValidToken(parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
		ctx = context.WithValue(ctx, ContextDisplayName, claims.DisplayName)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFrom returns the authenticated user id, or "" when the request
// carried no identity.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ContextUserID).(string)
	return id
}

// DisplayNameFrom returns the display name baked into the token. Callers that
// need a fresh name should resolve it against the user service instead.
func DisplayNameFrom(ctx context.Context) string {
	name, _ := ctx.Value(ContextDisplayName).(string)
	return name
}
