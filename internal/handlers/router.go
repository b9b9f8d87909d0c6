package handlers

import (
	"net/http"

	"github.com/antoan291/Logistics-Engine/internal/handlers/middleware"
	"github.com/antoan291/Logistics-Engine/internal/handlers/render"
	"github.com/antoan291/Logistics-Engine/internal/logger"
	"github.com/antoan291/Logistics-Engine/internal/models"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) (models.TokenPayload, error)
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authSvc authService,
	verifier accessVerifier,
	trailerSvc trailerService,
	l logger.Logger,
) http.Handler {
	withAuth := middleware.Authenticate(verifier)

	mux := http.NewServeMux()

	// Auth surface
	mux.Handle("POST /api/auth/login", handleLogin(authSvc, l))
	mux.Handle("POST /api/auth/refresh", handleTokenRefresh(authSvc, l))
	mux.Handle("POST /api/auth/logout", handleLogout(authSvc, l))
	mux.Handle("POST /api/auth/logout-all", withAuth(handleLogoutAll(authSvc, l)))
	mux.Handle("POST /api/auth/register", chain(handleRegister(authSvc, l), withAuth, middleware.RequireOwner))

	// Trailer surface, authentication required on all routes
	mux.Handle("POST /api/trailers", withAuth(handleCreateTrailer(trailerSvc, l)))
	mux.Handle("GET /api/trailers", withAuth(handleListTrailers(trailerSvc, l)))
	mux.Handle("GET /api/trailers/{id}", withAuth(handleGetTrailer(trailerSvc, l)))
	mux.Handle("PATCH /api/trailers/{id}", withAuth(handleUpdateTrailer(trailerSvc, l)))
	mux.Handle("DELETE /api/trailers/{id}", withAuth(handleDeactivateTrailer(trailerSvc, l)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, struct {
			Status bool `json:"status"`
		}{Status: true})
	})

	return chain(mux, middleware.LoggerMiddleware(l))
}
