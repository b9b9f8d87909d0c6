package trailer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
	"github.com/antoan291/Logistics-Engine/internal/repository/postgres"
	"github.com/antoan291/Logistics-Engine/internal/testutil"
)

func Test_TrailerService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	validParams := repository.CreateTrailerParams{
		Name:               "Dry Van 53",
		Type:               "dry_van",
		Length:             decimal.RequireFromString("16.15"),
		Width:              decimal.RequireFromString("2.59"),
		Height:             decimal.RequireFromString("2.90"),
		TrailerCubes:       decimal.RequireFromString("121.26"),
		MaxWeight:          decimal.RequireFromString("20411.66"),
		MaxAxleWeightFront: decimal.RequireFromString("5443.1"),
		MaxAxleWeightRear:  decimal.RequireFromString("9071.84"),
	}

	// Begin new db transaction and create TrailerService over it
	// Rollback transaction when test stops
	// An owner is created up front since trailers reference their creator
	withService := func(t *testing.T, fn func(s *TrailerService, owner models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			store := postgres.NewStorage(tx)

			owner, err := store.User().CreateUser(t.Context(), repository.CreateUserParams{
				Email:        "owner@b.com",
				PasswordHash: "hash",
				FullName:     "Owner",
				Role:         models.RoleOwner,
			})
			require.NoError(t, err)

			s, err := NewService(store)
			require.NoError(t, err, "trailer service should be created without errors")

			fn(s, owner)
		})
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				trailer, err := s.Create(t.Context(), validParams, owner.ID)

				require.NoError(t, err)
				assert.Equal(t, "Dry Van 53", trailer.Name)
				assert.Equal(t, owner.ID, trailer.CreatedBy)
				assert.True(t, trailer.IsActive)
			})
		})

		t.Run("missing name or type", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				noName := validParams
				noName.Name = ""

				_, err := s.Create(t.Context(), noName, owner.ID)

				require.EqualError(t, err, "Name and type are required")
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			})
		})

		dimensions := []struct {
			name    string
			mutate  func(p repository.CreateTrailerParams) repository.CreateTrailerParams
			message string
		}{
			{
				name: "zero length",
				mutate: func(p repository.CreateTrailerParams) repository.CreateTrailerParams {
					p.Length = decimal.Zero
					return p
				},
				message: "Length must be greater than 0",
			},
			{
				name: "negative max weight",
				mutate: func(p repository.CreateTrailerParams) repository.CreateTrailerParams {
					p.MaxWeight = decimal.RequireFromString("-1")
					return p
				},
				message: "Max weight must be greater than 0",
			},
			{
				name: "zero rear axle weight",
				mutate: func(p repository.CreateTrailerParams) repository.CreateTrailerParams {
					p.MaxAxleWeightRear = decimal.Zero
					return p
				},
				message: "Rear axle weight must be greater than 0",
			},
		}

		for _, tt := range dimensions {
			t.Run(tt.name, func(t *testing.T) {
				withService(t, func(s *TrailerService, owner models.User) {
					_, err := s.Create(t.Context(), tt.mutate(validParams), owner.ID)

					require.EqualError(t, err, tt.message)
					assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				})
			})
		}
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				created, err := s.Create(t.Context(), validParams, owner.ID)
				require.NoError(t, err)

				got, err := s.Get(t.Context(), created.ID)

				require.NoError(t, err)
				assert.Equal(t, created.ID, got.ID)
			})
		})

		t.Run("unknown id", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				_, err := s.Get(t.Context(), uuid.New())

				require.EqualError(t, err, "Trailer not found")
				assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
			})
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("deactivated trailers drop out", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				first, err := s.Create(t.Context(), validParams, owner.ID)
				require.NoError(t, err)
				second, err := s.Create(t.Context(), validParams, owner.ID)
				require.NoError(t, err)

				require.NoError(t, s.Deactivate(t.Context(), first.ID))

				trailers, err := s.List(t.Context())

				require.NoError(t, err)
				require.Len(t, trailers, 1)
				assert.Equal(t, second.ID, trailers[0].ID)
			})
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("partial update ok", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				created, err := s.Create(t.Context(), validParams, owner.ID)
				require.NoError(t, err)

				newName := "Reefer 48"
				updated, err := s.Update(t.Context(), created.ID, repository.UpdateTrailerParams{
					Name: &newName,
				})

				require.NoError(t, err)
				assert.Equal(t, "Reefer 48", updated.Name)
				assert.True(t, created.MaxWeight.Equal(updated.MaxWeight), "untouched fields keep their values")
			})
		})

		t.Run("provided dimension still has to be positive", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				created, err := s.Create(t.Context(), validParams, owner.ID)
				require.NoError(t, err)

				bad := decimal.RequireFromString("-2")
				_, err = s.Update(t.Context(), created.ID, repository.UpdateTrailerParams{
					Width: &bad,
				})

				require.EqualError(t, err, "Width must be greater than 0")
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			})
		})

		t.Run("unknown id", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				_, err := s.Update(t.Context(), uuid.New(), repository.UpdateTrailerParams{})

				require.EqualError(t, err, "Trailer not found")
			})
		})
	})

	t.Run("Deactivate", func(t *testing.T) {
		t.Run("unknown id", func(t *testing.T) {
			withService(t, func(s *TrailerService, owner models.User) {
				err := s.Deactivate(t.Context(), uuid.New())

				require.EqualError(t, err, "Trailer not found")
				assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
			})
		})
	})
}
