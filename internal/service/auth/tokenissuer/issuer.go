package tokenissuer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/antoan291/Logistics-Engine/internal/apperrors"
	"github.com/antoan291/Logistics-Engine/internal/models"
)

const (
	defaultSigningMethod = "HS256"
	defaultAccessTTL     = 15 * time.Minute
	defaultRefreshTTL    = 7 * 24 * time.Hour
)

// Claims embedded in both access and refresh tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// Issuer config with sensible defaults
type Config struct {
	// Distinct signing secrets
	// A leaked access secret must not allow minting refresh tokens
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock, overridable in tests
	Now func() time.Time
}

type Issuer struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func New(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("both signing secrets must be set")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Issuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// GenerateAccess signs the payload with the access secret
func (i *Issuer) GenerateAccess(payload models.TokenPayload) (models.IssuedToken, error) {
	return i.generate(payload, i.accessKey, i.accessTTL)
}

// GenerateRefresh signs the payload with the refresh secret
func (i *Issuer) GenerateRefresh(payload models.TokenPayload) (models.IssuedToken, error) {
	return i.generate(payload, i.refreshKey, i.refreshTTL)
}

// ParseAccess validates the token with the access secret and returns its payload
// Wraps apperrors.ErrInvalidToken on bad signature or elapsed expiry
func (i *Issuer) ParseAccess(tokenString string) (models.TokenPayload, error) {
	return i.parse(tokenString, i.accessKey)
}

// ParseRefresh validates the token with the refresh secret and returns its payload
func (i *Issuer) ParseRefresh(tokenString string) (models.TokenPayload, error) {
	return i.parse(tokenString, i.refreshKey)
}

func (i *Issuer) generate(payload models.TokenPayload, key []byte, ttl time.Duration) (models.IssuedToken, error) {
	now := i.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		i.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: payload.UserID,
			Email:  payload.Email,
			Role:   payload.Role,
		},
	)

	signed, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (i *Issuer) parse(tokenString string, key []byte) (models.TokenPayload, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{i.alg.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return models.TokenPayload{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	return models.TokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
