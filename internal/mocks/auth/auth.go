package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.TokenVerifier = (*StaticTokenVerifier)(nil)

// ErrUnknownToken is returned for tokens that were not registered.
var ErrUnknownToken = errors.New("unknown token")

// StaticTokenVerifier accepts a fixed set of tokens.
type StaticTokenVerifier struct {
	mu     sync.Mutex
	tokens map[string]domainauth.Principal
	calls  int
}

// NewStaticTokenVerifier creates a verifier with no known tokens.
func NewStaticTokenVerifier() *StaticTokenVerifier {
	return &StaticTokenVerifier{tokens: make(map[string]domainauth.Principal)}
}

// Add registers token as valid for p.
func (v *StaticTokenVerifier) Add(token string, p domainauth.Principal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p.Method == "" {
		p.Method = domainauth.MethodBearer
	}
	v.tokens[token] = p
}

// Verify returns the registered principal for rawToken.
func (v *StaticTokenVerifier) Verify(_ context.Context, rawToken string) (domainauth.Principal, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	p, ok := v.tokens[rawToken]
	if !ok {
		return domainauth.Principal{}, ErrUnknownToken
	}
	return p, nil
}

// Calls returns how many times Verify ran.
func (v *StaticTokenVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}
