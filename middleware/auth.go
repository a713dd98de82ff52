package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/dwello-app/rental_marketplace/controllers"
	"github.com/dwello-app/rental_marketplace/session"
)

// Auth resolves the bearer token through the session cache so repeated
// requests with the same token skip the user lookup.
func Auth(sessions *session.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenHeader := r.Header.Get("Authorization")
			if tokenHeader == "" {
				log.Printf("Missing Authorization header from request %s %s", r.Method, r.URL)
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			tokenParts := strings.Split(tokenHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				log.Printf("Invalid Authorization header format from request %s %s", r.Method, r.URL)
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			s, err := sessions.Get(r.Context(), tokenParts[1])
			if err != nil {
				log.Printf("Invalid or expired token: %v", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), controllers.UserIDKey, s.UserID)
			ctx = context.WithValue(ctx, controllers.UserRoleKey, s.Role)
			ctx = context.WithValue(ctx, controllers.TokenKey, tokenParts[1])

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
