package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/logger"
	"github.com/antoan291/Logistics-Engine/internal/models"
	"github.com/antoan291/Logistics-Engine/internal/repository"
	"github.com/antoan291/Logistics-Engine/internal/service/auth"
)

// verifierStub resolves tokens from a fixed table
type verifierStub struct {
	tokens map[string]models.TokenPayload
}

func (v verifierStub) VerifyAccess(tokenString string) (models.TokenPayload, error) {
	payload, ok := v.tokens[tokenString]
	if !ok {
		return payload, apperrors.ErrInvalidToken
	}
	return payload, nil
}

type authServiceStub struct {
	register  func(ctx context.Context, arg auth.RegisterParams) (auth.AuthResult, error)
	login     func(ctx context.Context, email string, password string) (auth.AuthResult, error)
	refresh   func(ctx context.Context, refreshToken string) (models.IssuedToken, error)
	logout    func(ctx context.Context, refreshToken string) error
	logoutAll func(ctx context.Context, userID uuid.UUID) error
}

func (s authServiceStub) Register(ctx context.Context, arg auth.RegisterParams) (auth.AuthResult, error) {
	return s.register(ctx, arg)
}

func (s authServiceStub) Login(ctx context.Context, email string, password string) (auth.AuthResult, error) {
	return s.login(ctx, email, password)
}

func (s authServiceStub) Refresh(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
	return s.refresh(ctx, refreshToken)
}

func (s authServiceStub) Logout(ctx context.Context, refreshToken string) error {
	return s.logout(ctx, refreshToken)
}

func (s authServiceStub) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.logoutAll(ctx, userID)
}

type trailerServiceStub struct {
	create     func(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error)
	list       func(ctx context.Context) ([]models.Trailer, error)
	get        func(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error)
	update     func(ctx context.Context, trailerID uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error)
	deactivate func(ctx context.Context, trailerID uuid.UUID) error
}

func (s trailerServiceStub) Create(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error) {
	return s.create(ctx, arg, createdBy)
}

func (s trailerServiceStub) List(ctx context.Context) ([]models.Trailer, error) {
	return s.list(ctx)
}

func (s trailerServiceStub) Get(ctx context.Context, trailerID uuid.UUID) (models.Trailer, error) {
	return s.get(ctx, trailerID)
}

func (s trailerServiceStub) Update(ctx context.Context, trailerID uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error) {
	return s.update(ctx, trailerID, arg)
}

func (s trailerServiceStub) Deactivate(ctx context.Context, trailerID uuid.UUID) error {
	return s.deactivate(ctx, trailerID)
}

var (
	ownerID      = uuid.MustParse("0b38b84e-44bb-41b5-8f6a-0e46e1a9f2b0")
	dispatcherID = uuid.MustParse("9f41f4e9-1f38-4f5d-8a30-1bb7b9f25c1e")

	testVerifier = verifierStub{tokens: map[string]models.TokenPayload{
		"owner-token":      {UserID: ownerID, Email: "owner@b.com", Role: models.RoleOwner},
		"dispatcher-token": {UserID: dispatcherID, Email: "d@b.com", Role: models.RoleDispatcher},
	}}
)

func newTestRouter(authSvc authService, trailerSvc trailerService) http.Handler {
	return NewRouter(authSvc, testVerifier, trailerSvc, logger.NewNoOp())
}

func doRequest(t *testing.T, router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func Test_AuthRoutes(t *testing.T) {
	t.Parallel()

	sampleUser := models.User{
		ID:       uuid.MustParse("5f9c2e8d-73b1-4c8f-9ad6-2a50b1f7d810"),
		Email:    "new@b.com",
		FullName: "New User",
		Role:     models.RoleDispatcher,
	}
	samplePair := models.TokenPair{
		Access:  models.IssuedToken{Value: "new-access"},
		Refresh: models.IssuedToken{Value: "new-refresh"},
	}

	t.Run("register", func(t *testing.T) {
		registerBody := `{"email":"new@b.com","password":"Abc12345!","fullName":"New User","role":"dispatcher"}`

		t.Run("owner creates a user", func(t *testing.T) {
			var gotParams auth.RegisterParams
			router := newTestRouter(authServiceStub{
				register: func(ctx context.Context, arg auth.RegisterParams) (auth.AuthResult, error) {
					gotParams = arg
					return auth.AuthResult{User: sampleUser, Pair: samplePair}, nil
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "owner-token", registerBody)

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.JSONEq(t, `{
				"user": {"id":"5f9c2e8d-73b1-4c8f-9ad6-2a50b1f7d810","email":"new@b.com","fullName":"New User","role":"dispatcher"},
				"accessToken": "new-access",
				"refreshToken": "new-refresh"
			}`, rec.Body.String())

			assert.Equal(t, "new@b.com", gotParams.Email)
			require.NotNil(t, gotParams.CreatedBy, "creator has to be recorded")
			assert.Equal(t, ownerID, *gotParams.CreatedBy)
		})

		t.Run("dispatcher is forbidden", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "dispatcher-token", registerBody)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Owner access required"}`, rec.Body.String())
		})

		t.Run("no token", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", registerBody)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"No token provided"}`, rec.Body.String())
		})

		t.Run("missing fields rejected before the service", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				register: func(ctx context.Context, arg auth.RegisterParams) (auth.AuthResult, error) {
					t.Error("service must not be called on invalid input")
					return auth.AuthResult{}, nil
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "owner-token", `{"email":"new@b.com"}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "validation_failed")
			assert.Contains(t, rec.Body.String(), "password", "field errors are reported by json name")
		})
	})

	t.Run("login", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				login: func(ctx context.Context, email string, password string) (auth.AuthResult, error) {
					assert.Equal(t, "new@b.com", email)
					assert.Equal(t, "Abc12345!", password)
					return auth.AuthResult{User: sampleUser, Pair: samplePair}, nil
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/login", "", `{"email":"new@b.com","password":"Abc12345!"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"accessToken":"new-access"`)
		})

		t.Run("bad credentials map to 401", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				login: func(ctx context.Context, email string, password string) (auth.AuthResult, error) {
					return auth.AuthResult{}, apperrors.Auth("Invalid email or password")
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/login", "", `{"email":"new@b.com","password":"wrong"}`)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Invalid email or password"}`, rec.Body.String())
		})

		t.Run("storage failure hides details", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				login: func(ctx context.Context, email string, password string) (auth.AuthResult, error) {
					return auth.AuthResult{}, fmt.Errorf("db error: connection refused")
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/login", "", `{"email":"new@b.com","password":"Abc12345!"}`)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Internal server error"}`, rec.Body.String())
		})
	})

	t.Run("refresh", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				refresh: func(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
					assert.Equal(t, "the-refresh-token", refreshToken)
					return models.IssuedToken{Value: "fresh-access", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"the-refresh-token"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"accessToken":"fresh-access"}`, rec.Body.String())
		})

		t.Run("unknown token maps to 401", func(t *testing.T) {
			router := newTestRouter(authServiceStub{
				refresh: func(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
					return models.IssuedToken{}, apperrors.Auth("Refresh token not found")
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"gone"}`)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Refresh token not found"}`, rec.Body.String())
		})
	})

	t.Run("logout", func(t *testing.T) {
		router := newTestRouter(authServiceStub{
			logout: func(ctx context.Context, refreshToken string) error {
				assert.Equal(t, "the-refresh-token", refreshToken)
				return nil
			},
		}, trailerServiceStub{})

		rec := doRequest(t, router, http.MethodPost, "/api/auth/logout", "", `{"refreshToken":"the-refresh-token"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Logout successful"}`, rec.Body.String())
	})

	t.Run("logout-all", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			var gotUserID uuid.UUID
			router := newTestRouter(authServiceStub{
				logoutAll: func(ctx context.Context, userID uuid.UUID) error {
					gotUserID = userID
					return nil
				},
			}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/logout-all", "dispatcher-token", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"Logged out from all devices"}`, rec.Body.String())
			assert.Equal(t, dispatcherID, gotUserID, "sessions of the caller are the ones removed")
		})

		t.Run("requires token", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodPost, "/api/auth/logout-all", "", "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	})
}

func Test_TrailerRoutes(t *testing.T) {
	t.Parallel()

	knownID := uuid.MustParse("83e7d2c5-6f28-4f6e-b1b2-47cf3a2d9be4")
	sampleTrailer := models.Trailer{
		ID:                 knownID,
		Name:               "Dry Van 53",
		Type:               "dry_van",
		Length:             decimal.RequireFromString("16.15"),
		Width:              decimal.RequireFromString("2.59"),
		Height:             decimal.RequireFromString("2.90"),
		TrailerCubes:       decimal.RequireFromString("121.26"),
		MaxWeight:          decimal.RequireFromString("20411.66"),
		MaxAxleWeightFront: decimal.RequireFromString("5443.1"),
		MaxAxleWeightRear:  decimal.RequireFromString("9071.84"),
		CreatedBy:          dispatcherID,
		IsActive:           true,
		CreatedAt:          time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	createBody := `{
		"name":"Dry Van 53","type":"dry_van",
		"length":16.15,"width":2.59,"height":2.90,"trailerCubes":121.26,
		"maxWeight":20411.66,"maxAxleWeightFront":5443.1,"maxAxleWeightRear":9071.84
	}`

	t.Run("every route requires a token", func(t *testing.T) {
		router := newTestRouter(authServiceStub{}, trailerServiceStub{})

		routes := []struct{ method, target string }{
			{http.MethodPost, "/api/trailers"},
			{http.MethodGet, "/api/trailers"},
			{http.MethodGet, "/api/trailers/" + knownID.String()},
			{http.MethodPatch, "/api/trailers/" + knownID.String()},
			{http.MethodDelete, "/api/trailers/" + knownID.String()},
		}
		for _, route := range routes {
			rec := doRequest(t, router, route.method, route.target, "", "")
			assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s must require a token", route.method, route.target)
		}
	})

	t.Run("create", func(t *testing.T) {
		t.Run("dispatcher may create", func(t *testing.T) {
			var gotCreatedBy uuid.UUID
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				create: func(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error) {
					gotCreatedBy = createdBy
					assert.Equal(t, "Dry Van 53", arg.Name)
					assert.True(t, arg.Length.Equal(decimal.RequireFromString("16.15")))
					return sampleTrailer, nil
				},
			})

			rec := doRequest(t, router, http.MethodPost, "/api/trailers", "dispatcher-token", createBody)

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Contains(t, rec.Body.String(), `"name":"Dry Van 53"`)
			assert.Equal(t, dispatcherID, gotCreatedBy)
		})

		t.Run("validation error maps to 400", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				create: func(ctx context.Context, arg repository.CreateTrailerParams, createdBy uuid.UUID) (models.Trailer, error) {
					return models.Trailer{}, apperrors.Validation("Length must be greater than 0")
				},
			})

			body := strings.Replace(createBody, "16.15", "-1", 1)
			rec := doRequest(t, router, http.MethodPost, "/api/trailers", "dispatcher-token", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Length must be greater than 0"}`, rec.Body.String())
		})
	})

	t.Run("list", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				list: func(ctx context.Context) ([]models.Trailer, error) {
					return []models.Trailer{sampleTrailer}, nil
				},
			})

			rec := doRequest(t, router, http.MethodGet, "/api/trailers", "owner-token", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), knownID.String())
		})

		t.Run("empty list is a json array", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				list: func(ctx context.Context) ([]models.Trailer, error) {
					return nil, nil
				},
			})

			rec := doRequest(t, router, http.MethodGet, "/api/trailers", "owner-token", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String(), "null would break clients expecting an array")
		})
	})

	t.Run("get", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				get: func(ctx context.Context, id uuid.UUID) (models.Trailer, error) {
					assert.Equal(t, knownID, id)
					return sampleTrailer, nil
				},
			})

			rec := doRequest(t, router, http.MethodGet, "/api/trailers/"+knownID.String(), "owner-token", "")

			assert.Equal(t, http.StatusOK, rec.Code)
		})

		t.Run("malformed id is 404, not 500", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{})

			rec := doRequest(t, router, http.MethodGet, "/api/trailers/not-a-uuid", "owner-token", "")

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"service_error","message":"Trailer not found"}`, rec.Body.String())
		})

		t.Run("unknown id is 404", func(t *testing.T) {
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				get: func(ctx context.Context, id uuid.UUID) (models.Trailer, error) {
					return models.Trailer{}, apperrors.NotFound("Trailer not found")
				},
			})

			rec := doRequest(t, router, http.MethodGet, "/api/trailers/"+knownID.String(), "owner-token", "")

			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	})

	t.Run("update", func(t *testing.T) {
		t.Run("only provided fields are passed through", func(t *testing.T) {
			var gotParams repository.UpdateTrailerParams
			router := newTestRouter(authServiceStub{}, trailerServiceStub{
				update: func(ctx context.Context, id uuid.UUID, arg repository.UpdateTrailerParams) (models.Trailer, error) {
					gotParams = arg
					return sampleTrailer, nil
				},
			})

			rec := doRequest(t, router, http.MethodPatch, "/api/trailers/"+knownID.String(), "owner-token", `{"name":"Reefer 48"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, gotParams.Name)
			assert.Equal(t, "Reefer 48", *gotParams.Name)
			assert.Nil(t, gotParams.MaxWeight, "absent fields stay nil")
			assert.Nil(t, gotParams.IsActive)
		})
	})

	t.Run("deactivate", func(t *testing.T) {
		router := newTestRouter(authServiceStub{}, trailerServiceStub{
			deactivate: func(ctx context.Context, id uuid.UUID) error {
				assert.Equal(t, knownID, id)
				return nil
			},
		})

		rec := doRequest(t, router, http.MethodDelete, "/api/trailers/"+knownID.String(), "owner-token", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Trailer deactivated successfully"}`, rec.Body.String())
	})
}

func Test_HealthRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(authServiceStub{}, trailerServiceStub{})

	rec := doRequest(t, router, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true}`, rec.Body.String())
}
