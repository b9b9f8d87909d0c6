package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/antoan291/Logistics-Engine/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	CreatedBy    *uuid.UUID
}

// UpdateUserParams carries a partial update, nil fields stay untouched
type UpdateUserParams struct {
	FullName *string
	Role     *string
	IsActive *bool
}

// User repository interface
type UserRepo interface {
	// Create user
	// If a user with the email exists already has to return apperrors.ErrEmailTaken
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Partial update of profile fields
	// If user not found must return apperrors.ErrUserNotFound
	UpdateUser(ctx context.Context, userID uuid.UUID, arg UpdateUserParams) (models.User, error)

	// Soft delete: sets is_active to false, the terminal state
	DeactivateUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	// No duplicate check: a user may hold unlimited concurrent sessions
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token by its string even if expired
	// If not found must return apperrors.ErrRefreshTokenNotFound
	GetByToken(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Delete the token by its string, no error if absent
	DeleteByToken(ctx context.Context, tokenString string) error

	// Delete every token owned by the user, returns deleted count
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Maintenance sweep: delete rows whose expiry passed before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type CreateTrailerParams struct {
	Name               string
	Type               string
	Length             decimal.Decimal
	Width              decimal.Decimal
	Height             decimal.Decimal
	TrailerCubes       decimal.Decimal
	MaxWeight          decimal.Decimal
	MaxAxleWeightFront decimal.Decimal
	MaxAxleWeightRear  decimal.Decimal
	CreatedBy          uuid.UUID
}

// UpdateTrailerParams carries a partial update, nil fields stay untouched
type UpdateTrailerParams struct {
	Name               *string
	Type               *string
	Length             *decimal.Decimal
	Width              *decimal.Decimal
	Height             *decimal.Decimal
	TrailerCubes       *decimal.Decimal
	MaxWeight          *decimal.Decimal
	MaxAxleWeightFront *decimal.Decimal
	MaxAxleWeightRear  *decimal.Decimal
	IsActive           *bool
}

// Trailer repository interface
type TrailerRepo interface {
	CreateTrailer(ctx context.Context, arg CreateTrailerParams) (models.Trailer, error)

	// Active trailers only, newest first
	ListActiveTrailers(ctx context.Context) ([]models.Trailer, error)

	// If trailer not found must return apperrors.ErrTrailerNotFound
	GetTrailerByID(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error)
	UpdateTrailer(ctx context.Context, trailerID uuid.UUID, arg UpdateTrailerParams) (models.Trailer, error)

	// Soft delete: sets is_active to false
	DeactivateTrailer(ctx context.Context, trailerID uuid.UUID) error
}

// Storage aggregates all repositories and provides transactions
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Trailer() TrailerRepo

	// InTx runs fn with a Storage bound to a single transaction
	// Rolls back when fn returns an error
	InTx(ctx context.Context, fn func(Storage) error) error
}
