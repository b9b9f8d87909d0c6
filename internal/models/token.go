package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken as persisted in the database
// Deleted on logout or lazily when found expired, never updated in place
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenPayload is the identity claim set embedded in both token types
// It is transient and never persisted
type TokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued on register and login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
