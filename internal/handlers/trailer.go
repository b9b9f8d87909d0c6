package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/handlers/render"
	"github.com/antoan291/Logistics-Engine/internal/handlers/userctx"
	"github.com/antoan291/Logistics-Engine/internal/logger"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
)

type trailerService interface {
	Create(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error)
	List(ctx context.Context) ([]models.Trailer, error)
	Get(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error)
	Update(ctx context.Context, trailerID uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error)
	Deactivate(ctx context.Context, trailerID uuid.UUID) error
}

type trailerResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Length             decimal.Decimal `json:"length"`
	Width              decimal.Decimal `json:"width"`
	Height             decimal.Decimal `json:"height"`
	TrailerCubes       decimal.Decimal `json:"trailerCubes"`
	MaxWeight          decimal.Decimal `json:"maxWeight"`
	MaxAxleWeightFront decimal.Decimal `json:"maxAxleWeightFront"`
	MaxAxleWeightRear  decimal.Decimal `json:"maxAxleWeightRear"`
	CreatedBy          uuid.UUID       `json:"createdBy"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          *time.Time      `json:"updatedAt,omitempty"`
}

func toTrailerResponse(t models.Trailer) trailerResponse {
	return trailerResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Type:               t.Type,
		Length:             t.Length,
		Width:              t.Width,
		Height:             t.Height,
		TrailerCubes:       t.TrailerCubes,
		MaxWeight:          t.MaxWeight,
		MaxAxleWeightFront: t.MaxAxleWeightFront,
		MaxAxleWeightRear:  t.MaxAxleWeightRear,
		CreatedBy:          t.CreatedBy,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// trailerID parses the {id} path value, writes 404 when it is not a uuid
func trailerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Trailer not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func renderTrailerError(w http.ResponseWriter, l logger.Logger, action string, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		l.Error("trailer operation failed", "action", action, "error", err)
	}
	render.AppError(w, err)
}

func handleCreateTrailer(s trailerService, l logger.Logger) http.Handler {
	type request struct {
		Name               string          `json:"name" validate:"required"`
		Type               string          `json:"type" validate:"required"`
		Length             decimal.Decimal `json:"length" validate:"required"`
		Width              decimal.Decimal `json:"width" validate:"required"`
		Height             decimal.Decimal `json:"height" validate:"required"`
		TrailerCubes       decimal.Decimal `json:"trailerCubes" validate:"required"`
		MaxWeight          decimal.Decimal `json:"maxWeight" validate:"required"`
		MaxAxleWeightFront decimal.Decimal `json:"maxAxleWeightFront" validate:"required"`
		MaxAxleWeightRear  decimal.Decimal `json:"maxAxleWeightRear" validate:"required"`
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

		trailer, err := s.Create(r.Context(), repository.CreateTrailerParams{
			Name:               data.Name,
			Type:               data.Type,
			Length:             data.Length,
			Width:              data.Width,
			Height:             data.Height,
			TrailerCubes:       data.TrailerCubes,
			MaxWeight:          data.MaxWeight,
			MaxAxleWeightFront: data.MaxAxleWeightFront,
			MaxAxleWeightRear:  data.MaxAxleWeightRear,
		}, identity.UserID)
		if err != nil {
			renderTrailerError(w, l, "create", err)
			return
		}

		render.JSONWithStatus(w, toTrailerResponse(trailer), http.StatusCreated)
	})
}

func handleListTrailers(s trailerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trailers, err := s.List(r.Context())
		if err != nil {
			renderTrailerError(w, l, "list", err)
			return
		}

		response := make([]trailerResponse, 0, len(trailers))
		for _, t := range trailers {
			response = append(response, toTrailerResponse(t))
		}

		render.JSON(w, response)
	})
}

func handleGetTrailer(s trailerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := trailerID(w, r)
		if !ok {
			return
		}

		trailer, err := s.Get(r.Context(), id)
		if err != nil {
			renderTrailerError(w, l, "get", err)
			return
		}

		render.JSON(w, toTrailerResponse(trailer))
	})
}

func handleUpdateTrailer(s trailerService, l logger.Logger) http.Handler {
	type request struct {
		Name               *string          `json:"name"`
		Type               *string          `json:"type"`
		Length             *decimal.Decimal `json:"length"`
		Width              *decimal.Decimal `json:"width"`
		Height             *decimal.Decimal `json:"height"`
		TrailerCubes       *decimal.Decimal `json:"trailerCubes"`
		MaxWeight          *decimal.Decimal `json:"maxWeight"`
		MaxAxleWeightFront *decimal.Decimal `json:"maxAxleWeightFront"`
		MaxAxleWeightRear  *decimal.Decimal `json:"maxAxleWeightRear"`
		IsActive           *bool            `json:"isActive"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := trailerID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		trailer, err := s.Update(r.Context(), id, repository.UpdateTrailerParams{
			Name:               data.Name,
			Type:               data.Type,
			Length:             data.Length,
			Width:              data.Width,
			Height:             data.Height,
			TrailerCubes:       data.TrailerCubes,
			MaxWeight:          data.MaxWeight,
			MaxAxleWeightFront: data.MaxAxleWeightFront,
			MaxAxleWeightRear:  data.MaxAxleWeightRear,
			IsActive:           data.IsActive,
		})
		if err != nil {
			renderTrailerError(w, l, "update", err)
			return
		}

		render.JSON(w, toTrailerResponse(trailer))
	})
}

func handleDeactivateTrailer(s trailerService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := trailerID(w, r)
		if !ok {
			return
		}

		if err := s.Deactivate(r.Context(), id); err != nil {
			renderTrailerError(w, l, "deactivate", err)
			return
		}

		render.JSON(w, response{Message: "Trailer deactivated successfully"})
	})
}
