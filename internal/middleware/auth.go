package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/devsaround/blog-api/internal/httpx"
	"github.com/devsaround/blog-api/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth returns middleware that authenticates requests with a Bearer token
// from the Authorization header. Verified requests carry the subject's user
// id in the context; everything else is rejected before the handler runs.
func Auth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}

			raw, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || raw == "" {
				httpx.Fail(w, http.StatusUnauthorized, "invalid authorization format", nil)
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				// Propagates the specific reason (expired vs invalid).
				httpx.Fail(w, http.StatusUnauthorized, err.Error(), nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
