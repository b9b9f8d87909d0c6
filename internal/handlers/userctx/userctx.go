package userctx

import (
	"context"

	"github.com/antoan291/Logistics-Engine/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context carrying the authenticated identity
func New(ctx context.Context, p models.TokenPayload) context.Context {
	return context.WithValue(ctx, identityKey, p)
}

// Extract the authenticated identity from the context
func FromContext(ctx context.Context) (models.TokenPayload, bool) {
	p, ok := ctx.Value(identityKey).(models.TokenPayload)
	return p, ok
}
