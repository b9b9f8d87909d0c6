package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trailer is a physical cargo trailer
// Dimensions are meters, volume is cubic meters, weights are kilograms
type Trailer struct {
	ID   uuid.UUID
	Name string
	Type string

	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal

	TrailerCubes decimal.Decimal

	MaxWeight          decimal.Decimal
	MaxAxleWeightFront decimal.Decimal
	MaxAxleWeightRear  decimal.Decimal

	CreatedBy uuid.UUID
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}
