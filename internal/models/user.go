package models

import (
	"time"

	"github.com/google/uuid"
)

// Known roles
// Stored as plain text but closed at the registration boundary
const (
	RoleOwner      = "owner"
	RoleDispatcher = "dispatcher"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    *uuid.UUID // owner who registered the user, nil for seeded accounts
}
