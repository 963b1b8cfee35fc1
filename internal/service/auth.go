package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/ports"
)

// ErrUnauthorized is returned when no credential identifies the caller.
var ErrUnauthorized = errors.New("unauthorized")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	// APIKey is the shared secret accepted in the x-api-key header. Empty disables key auth.
	APIKey string
	// Verifier validates bearer tokens. Nil disables bearer auth.
	Verifier ports.TokenVerifier
}

// AuthService authenticates API callers by shared key or bearer token.
type AuthService struct {
	apiKey   []byte
	verifier ports.TokenVerifier
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{verifier: opts.Verifier, now: time.Now}
	if opts.APIKey != "" {
		s.apiKey = []byte(opts.APIKey)
	}
	return s
}

// Credentials are the raw values a request presented.
type Credentials struct {
	APIKey      string
	BearerToken string
}

// Required reports whether any authentication method is configured.
func (s *AuthService) Required() bool {
	return len(s.apiKey) > 0 || s.verifier != nil
}

// Authenticate resolves the caller. The API key is tried first, then the bearer token.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (domainauth.Principal, error) {
	if len(s.apiKey) > 0 && creds.APIKey != "" {
		if subtle.ConstantTimeCompare([]byte(creds.APIKey), s.apiKey) == 1 {
			return domainauth.Principal{Subject: "api-key", Method: domainauth.MethodAPIKey}, nil
		}
		return domainauth.Principal{}, ErrUnauthorized
	}

	if s.verifier != nil && creds.BearerToken != "" {
		p, err := s.verifier.Verify(ctx, creds.BearerToken)
		if err != nil {
			return domainauth.Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		if p.Expired(s.now()) {
			return domainauth.Principal{}, fmt.Errorf("%w: token expired", ErrUnauthorized)
		}
		return p, nil
	}

	return domainauth.Principal{}, ErrUnauthorized
}
