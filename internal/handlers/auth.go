package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/handlers/render"
	"github.com/antoan291/Logistics-Engine/internal/handlers/userctx"
	"github.com/antoan291/Logistics-Engine/internal/logger"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/service/auth"
)

type authService interface {
	// Register a new user, owner initiated
	Register(ctx context.Context, arg auth.RegisterParams) (auth.AuthResult, error)

	// Login with email and password
	// Fails uniformly for unknown email and wrong password
	Login(ctx context.Context, email string, password string) (auth.AuthResult, error)

	// Exchange a refresh token for a new access token, no rotation
	Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error)

	// Delete the session bound to the refresh token, idempotent
	Logout(ctx context.Context, refreshToken string) error

	// Delete every session of the user
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     string    `json:"role"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func toAuthResponse(result auth.AuthResult) authResponse {
	return authResponse{
		User: userResponse{
			ID:       result.User.ID,
			Email:    result.User.Email,
			FullName: result.User.FullName,
			Role:     result.User.Role,
		},
		AccessToken:  result.Pair.Access.Value,
		RefreshToken: result.Pair.Refresh.Value,
	}
}

// renderAuthError logs unexpected failures and maps the rest to status codes
func renderAuthError(w http.ResponseWriter, l logger.Logger, action string, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		l.Error("auth operation failed", "action", action, "error", err)
	}
	render.AppError(w, err)
}

func handleRegister(s authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		Role     string `json:"role" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		identity, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		result, err := s.Register(r.Context(), auth.RegisterParams{
			Email:     data.Email,
			Password:  data.Password,
			FullName:  data.FullName,
			Role:      data.Role,
			CreatedBy: &identity.UserID,
		})
		if err != nil {
			renderAuthError(w, l, "register", err)
			return
		}

		render.JSONWithStatus(w, toAuthResponse(result), http.StatusCreated)
	})
}

func handleLogin(s authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := s.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			renderAuthError(w, l, "login", err)
			return
		}

		render.JSON(w, toAuthResponse(result))
	})
}

func handleTokenRefresh(s authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		access, err := s.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			renderAuthError(w, l, "refresh", err)
			return
		}

		render.JSON(w, response{AccessToken: access.Value})
	})
}

func handleLogout(s authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if err := s.Logout(r.Context(), data.RefreshToken); err != nil {
			renderAuthError(w, l, "logout", err)
			return
		}

		render.JSON(w, response{Message: "Logout successful"})
	})
}

func handleLogoutAll(s authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		if err := s.LogoutAll(r.Context(), identity.UserID); err != nil {
			renderAuthError(w, l, "logout-all", err)
			return
		}

		render.JSON(w, response{Message: "Logged out from all devices"})
	})
}
