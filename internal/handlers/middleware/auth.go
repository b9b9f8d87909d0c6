package middleware

import (
	"net/http"
	"strings"

	"github.com/antoan291/Logistics-Engine/internal/handlers/render"
	"github.com/antoan291/Logistics-Engine/internal/handlers/userctx"
	"github.com/antoan291/Logistics-Engine/internal/models"
)

const bearerScheme = "Bearer "

type accessVerifier interface {
	// Verify the access token and return the identity it carries
	VerifyAccess(tokenString string) (models.TokenPayload, error)
}

// Authenticate extracts the bearer token, verifies it and attaches the
// identity to the request context
func Authenticate(verifier accessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerScheme) {
				render.ServiceError(w, "No token provided", http.StatusUnauthorized)
				return
			}

			payload, err := verifier.VerifyAccess(strings.TrimPrefix(header, bearerScheme))
			if err != nil {
				render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), payload)))
		})
	}
}

// RequireOwner gates privileged operations on the owner role
// Must run after Authenticate: a request without identity gets 401
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		if identity.Role != models.RoleOwner {
			render.ServiceError(w, "Owner access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
