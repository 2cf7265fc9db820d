package auth

import (
	"context"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

// Provider resolves an inbound bearer token to a user, or an error. The rest
// of the system trusts the returned user ID completely and partitions all
// data by it.
type Provider interface {
	ValidateTokenLocal(token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}
