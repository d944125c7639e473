package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userIDKey contextKey = "recipebloc.user_id"

// UserIDFromContext returns the authenticated caller's id placed in the
// request context by RequireAuth.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

// RequireAuth rejects requests without a valid Bearer token and stores
// the verified user id in the request context for handlers.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "Authorization header format must be Bearer {token}")
				return
			}

			id, err := ExtractIDFromToken(parts[1], secret)
			if err != nil {
				unauthorized(w, "Authentication failed!")
				return
			}

			objID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				unauthorized(w, "Authentication failed!")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, objID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
