package auth

import (
	"context"
	"net/http"
	"strings"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/httputil"
	"bread-calculator/internal/logging"
)

type contextKey string

const claimsKey = contextKey("claims")

// JWTMiddleware rejects requests without a valid bearer token before they
// reach the wrapped handler.
func JWTMiddleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperr.Authentication("missing authorization header"))
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				httputil.WriteError(w, r, apperr.Authentication("invalid authorization header"))
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				logging.FromContext(r.Context()).WithError(err).Debug("token rejected")
				httputil.WriteError(w, r, apperr.Authentication("could not validate credentials"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = logging.WithEntry(ctx, logging.FromContext(ctx).WithField("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
