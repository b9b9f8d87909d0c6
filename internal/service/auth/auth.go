package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
)

// local@domain.tld shape, no embedded whitespace
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TokenIssuer issues and verifies signed time bound tokens
type TokenIssuer interface {
	GenerateAccess(payload models.TokenPayload) (models.IssuedToken, error)
	GenerateRefresh(payload models.TokenPayload) (models.IssuedToken, error)

	// Must wrap apperrors.ErrInvalidToken on bad signature or elapsed expiry
	ParseAccess(tokenString string) (models.TokenPayload, error)
	ParseRefresh(tokenString string) (models.TokenPayload, error)
}

type Config struct {
	// Hasher to use during registration or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Clock, overridable in tests
	Now func() time.Time
}

type RegisterParams struct {
	Email    string
	Password string
	FullName string
	Role     string

	// Owner who registers the user
	CreatedBy *uuid.UUID
}

// Result of register and login: the user plus a fresh token pair
type AuthResult struct {
	User models.User
	Pair models.TokenPair
}

// AuthService orchestrates hasher, issuer and storage into the
// register/login/refresh/logout workflows
type AuthService struct {
	hasher  PasswordHasher
	issuer  TokenIssuer
	storage repository.Storage
	now     func() time.Time
}

func NewService(cfg Config, issuer TokenIssuer, storage repository.Storage) (*AuthService, error) {
	if issuer == nil || storage == nil {
		return nil, errors.New("issuer and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		hasher:  hasher,
		issuer:  issuer,
		storage: storage,
		now:     now,
	}, nil
}

// Register creates a user and issues a token pair
// Validation order matters for error precedence: email format, role,
// email uniqueness, password strength
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (AuthResult, error) {
	var result AuthResult

	if !emailRegexp.MatchString(arg.Email) {
		return result, apperrors.Validation("Invalid email format")
	}

	switch arg.Role {
	case models.RoleOwner, models.RoleDispatcher:
	default:
		return result, apperrors.Validation("Invalid role")
	}

	_, err := s.storage.User().GetUserByEmail(ctx, arg.Email)
	switch {
	case err == nil:
		return result, apperrors.Conflict("Email already in use")
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return result, fmt.Errorf("email lookup failed. Err: %w", err)
	}

	if errs := ValidateStrength(arg.Password); len(errs) > 0 {
		return result, apperrors.Validation(strings.Join(errs, ", "))
	}

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return result, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	// Create the user and persist its refresh token in one transaction
	// so a failed token write never leaves a user without a session row
	err = s.storage.InTx(ctx, func(store repository.Storage) error {
		user, err := store.User().CreateUser(ctx, repository.CreateUserParams{
			Email:        arg.Email,
			PasswordHash: hash,
			FullName:     arg.FullName,
			Role:         arg.Role,
			CreatedBy:    arg.CreatedBy,
		})
		// A concurrent registration may win the race after the pre-check,
		// the storage level unique violation is the same conflict
		if errors.Is(err, apperrors.ErrEmailTaken) {
			return apperrors.Conflict("Email already in use").WithCause(err)
		}
		if err != nil {
			return fmt.Errorf("can't create user. Err: %w", err)
		}

		pair, err := s.generateTokens(ctx, store, user)
		if err != nil {
			return err
		}

		result = AuthResult{User: user, Pair: pair}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	return result, nil
}

// Login verifies credentials and issues a token pair
// Unknown email and wrong password fail with the same message so emails
// can't be enumerated
func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	var result AuthResult

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return result, apperrors.Auth("Invalid email or password").WithCause(err)
	case err != nil:
		return result, fmt.Errorf("email lookup failed. Err: %w", err)
	}

	if !user.IsActive {
		return result, apperrors.Auth("User account is deactivated")
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return result, apperrors.Auth("Invalid email or password").WithCause(err)
	}

	pair, err := s.generateTokens(ctx, s.storage, user)
	if err != nil {
		return result, err
	}

	return AuthResult{User: user, Pair: pair}, nil
}

// Refresh exchanges a valid refresh token for a new access token
// The refresh token itself is not rotated
// The stored row is authoritative: a deleted token is rejected even while
// its signature is still valid
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
	var access models.IssuedToken

	payload, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return access, apperrors.Auth("Invalid or expired refresh token").WithCause(err)
	}

	stored, err := s.storage.Refresh().GetByToken(ctx, refreshToken)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return access, apperrors.Auth("Refresh token not found").WithCause(err)
	case err != nil:
		return access, fmt.Errorf("refresh token lookup failed. Err: %w", err)
	}

	// Defense in depth beyond the signature's own expiry
	// Delete the stale row while we are here
	if stored.ExpiresAt.Before(s.now()) {
		if err := s.storage.Refresh().DeleteByToken(ctx, refreshToken); err != nil {
			return access, fmt.Errorf("can't delete expired refresh token. Err: %w", err)
		}
		return access, apperrors.Auth("Refresh token expired")
	}

	user, err := s.storage.User().GetUserByID(ctx, payload.UserID)
	if errors.Is(err, apperrors.ErrUserNotFound) || (err == nil && !user.IsActive) {
		return access, apperrors.Auth("User not found or deactivated")
	}
	if err != nil {
		return access, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	access, err = s.issuer.GenerateAccess(models.TokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return access, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return access, nil
}

// Logout deletes the refresh token from the store
// Idempotent: absent tokens are not an error
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.storage.Refresh().DeleteByToken(ctx, refreshToken)
}

// LogoutAll deletes every refresh token owned by the user
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	_, err := s.storage.Refresh().DeleteAllByUser(ctx, userID)
	return err
}

// VerifyAccess validates an access token and returns the identity it carries
// Pure computation, no storage lookup
func (s *AuthService) VerifyAccess(tokenString string) (models.TokenPayload, error) {
	return s.issuer.ParseAccess(tokenString)
}

// generateTokens is the single path by which refresh tokens enter the store:
// every refresh token issued to a client has a corresponding row until
// logout or expiry
func (s *AuthService) generateTokens(ctx context.Context, store repository.Storage, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	payload := models.TokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	access, err := s.issuer.GenerateAccess(payload)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	refresh, err := s.issuer.GenerateRefresh(payload)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	_, err = store.Refresh().Save(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     refresh.Value,
		CreatedAt: s.now().Truncate(time.Second),
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
