package trailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
)

// TrailerService validates trailer input and delegates to storage
type TrailerService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*TrailerService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &TrailerService{storage: storage}, nil
}

func (s *TrailerService) Create(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error) {
	var trailer models.Trailer

	if arg.Name == "" || arg.Type == "" {
		return trailer, apperrors.Validation("Name and type are required")
	}

	checks := []struct {
		value   decimal.Decimal
		message string
	}{
		{arg.Length, "Length must be greater than 0"},
		{arg.Width, "Width must be greater than 0"},
		{arg.Height, "Height must be greater than 0"},
		{arg.TrailerCubes, "Trailer cubes must be greater than 0"},
		{arg.MaxWeight, "Max weight must be greater than 0"},
		{arg.MaxAxleWeightFront, "Front axle weight must be greater than 0"},
		{arg.MaxAxleWeightRear, "Rear axle weight must be greater than 0"},
	}
	for _, c := range checks {
		if !c.value.IsPositive() {
			return trailer, apperrors.Validation(c.message)
		}
	}

	arg.CreatedBy = createdBy

	trailer, err := s.storage.Trailer().CreateTrailer(ctx, arg)
	if err != nil {
		return trailer, fmt.Errorf("can't create trailer. Err: %w", err)
	}

	return trailer, nil
}

func (s *TrailerService) List(ctx context.Context) ([]models.Trailer, error) {
	return s.storage.Trailer().ListActiveTrailers(ctx)
}

func (s *TrailerService) Get(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error) {
	trailer, err := s.storage.Trailer().GetTrailerByID(ctx, trailerID)
	if errors.Is(err, apperrors.ErrTrailerNotFound) {
		return trailer, apperrors.NotFound("Trailer not found").WithCause(err)
	}
	return trailer, err
}

// Update applies a partial update, validating only the provided fields
func (s *TrailerService) Update(ctx context.Context, trailerID uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error) {
	var trailer models.Trailer

	checks := []struct {
		value   *decimal.Decimal
		message string
	}{
		{arg.Length, "Length must be greater than 0"},
		{arg.Width, "Width must be greater than 0"},
		{arg.Height, "Height must be greater than 0"},
		{arg.TrailerCubes, "Trailer cubes must be greater than 0"},
		{arg.MaxWeight, "Max weight must be greater than 0"},
		{arg.MaxAxleWeightFront, "Front axle weight must be greater than 0"},
		{arg.MaxAxleWeightRear, "Rear axle weight must be greater than 0"},
	}
	for _, c := range checks {
		if c.value != nil && !c.value.IsPositive() {
			return trailer, apperrors.Validation(c.message)
		}
	}

	trailer, err := s.storage.Trailer().UpdateTrailer(ctx, trailerID, arg)
	if errors.Is(err, apperrors.ErrTrailerNotFound) {
		return trailer, apperrors.NotFound("Trailer not found").WithCause(err)
	}
	return trailer, err
}

// Deactivate is the trailer's terminal state, it drops out of listings
func (s *TrailerService) Deactivate(ctx context.Context, trailerID uuid.UUID) error {
	err := s.storage.Trailer().DeactivateTrailer(ctx, trailerID)
	if errors.Is(err, apperrors.ErrTrailerNotFound) {
		return apperrors.NotFound("Trailer not found").WithCause(err)
	}
	return err
}
