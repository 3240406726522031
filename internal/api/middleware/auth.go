package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/roblucci9302/Lucide-3/internal/api"
)

type contextKey string

const OwnerIDKey contextKey = "owner_id"

// TokenValidator resolves a bearer token to the owner it authenticates.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

func BearerAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			ownerID, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(OwnerIDKey).(string)
	return ownerID
}

// StaticTokens validates against a fixed token-to-owner table, for
// deployments without an identity provider.
type StaticTokens map[string]string

func (s StaticTokens) ValidateToken(ctx context.Context, token string) (string, error) {
	ownerID, ok := s[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return ownerID, nil
}

// ErrUnknownToken is returned for tokens absent from the static table.
var ErrUnknownToken = errors.New("unknown token")
