package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
)

type TrailerRepo struct {
	DB DBTX
}

const trailerColumns = `id, name, type, length, width, height, trailer_cubes,
max_weight, max_axle_weight_front, max_axle_weight_rear,
created_by, is_active, created_at, updated_at`

const createTrailer = `-- name: CreateTrailer
INSERT INTO trailers (name, type, length, width, height, trailer_cubes,
                      max_weight, max_axle_weight_front, max_axle_weight_rear, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + trailerColumns

func (r *TrailerRepo) CreateTrailer(ctx context.Context, arg repository.CreateTrailerParams) (models.Trailer, error) {
	rows, _ := r.DB.Query(ctx, createTrailer,
		arg.Name, arg.Type, arg.Length, arg.Width, arg.Height, arg.TrailerCubes,
		arg.MaxWeight, arg.MaxAxleWeightFront, arg.MaxAxleWeightRear, arg.CreatedBy,
	)
	trailer, err := pgx.CollectOneRow(rows, rowToTrailer)
	if err != nil {
		return trailer, fmt.Errorf("db error: %w", err)
	}
	return trailer, nil
}

const listActiveTrailers = `-- name: ListActiveTrailers
SELECT ` + trailerColumns + `
FROM trailers
WHERE is_active = true
ORDER BY created_at DESC
`

func (r *TrailerRepo) ListActiveTrailers(ctx context.Context) ([]models.Trailer, error) {
	rows, _ := r.DB.Query(ctx, listActiveTrailers)
	trailers, err := pgx.CollectRows(rows, rowToTrailer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trailers, nil
}

const getTrailerByID = `-- name: GetTrailerByID
SELECT ` + trailerColumns + `
FROM trailers
WHERE id = $1
`

func (r *TrailerRepo) GetTrailerByID(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error) {
	rows, _ := r.DB.Query(ctx, getTrailerByID, trailerID)
	trailer, err := pgx.CollectOneRow(rows, rowToTrailer)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return trailer, apperrors.ErrTrailerNotFound
	}

	return trailer, err
}

const updateTrailer = `-- name: UpdateTrailer
UPDATE trailers
SET name                  = COALESCE($2, name),
    type                  = COALESCE($3, type),
    length                = COALESCE($4, length),
    width                 = COALESCE($5, width),
    height                = COALESCE($6, height),
    trailer_cubes         = COALESCE($7, trailer_cubes),
    max_weight            = COALESCE($8, max_weight),
    max_axle_weight_front = COALESCE($9, max_axle_weight_front),
    max_axle_weight_rear  = COALESCE($10, max_axle_weight_rear),
    is_active             = COALESCE($11, is_active),
    updated_at            = now()
WHERE id = $1
RETURNING ` + trailerColumns

func (r *TrailerRepo) UpdateTrailer(ctx context.Context, trailerID uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error) {
	rows, _ := r.DB.Query(ctx, updateTrailer, trailerID,
		arg.Name, arg.Type, arg.Length, arg.Width, arg.Height, arg.TrailerCubes,
		arg.MaxWeight, arg.MaxAxleWeightFront, arg.MaxAxleWeightRear, arg.IsActive,
	)
	trailer, err := pgx.CollectOneRow(rows, rowToTrailer)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return trailer, apperrors.ErrTrailerNotFound
	}

	return trailer, err
}

const deactivateTrailer = `-- name: DeactivateTrailer
UPDATE trailers
SET is_active = false, updated_at = now()
WHERE id = $1
`

func (r *TrailerRepo) DeactivateTrailer(ctx context.Context, trailerID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deactivateTrailer, trailerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTrailerNotFound
	}
	return nil
}

func rowToTrailer(row pgx.CollectableRow) (models.Trailer, error) {
	var t models.Trailer
	err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.Length, &t.Width, &t.Height, &t.TrailerCubes,
		&t.MaxWeight, &t.MaxAxleWeightFront, &t.MaxAxleWeightRear,
		&t.CreatedBy, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
