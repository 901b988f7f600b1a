package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

// userContextKey is the context key for the authenticated user id.
type userContextKey struct{}

// Claims are the fields read from a bearer token. Anonymous client keys carry
// a role but no subject.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserMiddleware verifies HS256 bearer tokens signed with secret and injects
// the token subject as the user id. If secret is empty, the middleware is a
// no-op.
func UserMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseToken(secret, bearerToken(r))
			if err != nil {
				telemetry.AddError(r.Context(), err)
				writeUnauthorized(w)
				return
			}

			telemetry.AddLogField(r.Context(), "user_id", claims.Subject)
			ctx := context.WithValue(r.Context(), userContextKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SignToken mints an HS256 token the middleware accepts.
func SignToken(secret []byte, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// bearerToken extracts the token from the Authorization header. The "Bearer "
// prefix is optional.
func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(domain.ErrorBody{
		Error:          "Invalid or missing bearer token",
		Classification: domain.ErrorTypeUnauthorized,
	})
}

// GetUserID retrieves the authenticated user id from context.
// Returns an empty string for anonymous requests.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userContextKey{}).(string); ok {
		return id
	}
	return ""
}
