package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
)

// TokenVerifier validates a bearer token issued by an identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Principal, error)
}
