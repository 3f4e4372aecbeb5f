package lib

import (
	"context"

	"github.com/fiffu/guardwatch/lib/models"
)

// Identity is the authenticated principal this device acts for.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Auth exposes the current signed-in identity. Returns ErrNotAuthenticated
// when no identity is provisioned.
type Auth interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
}

// TokenSource obtains a fresh delivery token from the local messaging
// subsystem, bypassing any cached value.
type TokenSource interface {
	FreshToken(ctx context.Context) (string, error)
}

// Locator requests a single best-effort location fix.
type Locator interface {
	Locate(ctx context.Context) (*models.LatLng, error)
}
