// Package oidc verifies bearer tokens issued by an OpenID Connect provider.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/ports"
)

// VerifierConfig holds configuration for the bearer token verifier.
type VerifierConfig struct {
	// DiscoveryURL is the issuer URL, with or without the well-known suffix.
	DiscoveryURL string
	// ClientID is the expected audience.
	ClientID   string
	HTTPClient *http.Client // Optional, defaults to a client with a 30s timeout
}

// Verifier implements ports.TokenVerifier with go-oidc.
type Verifier struct {
	httpClient *http.Client
	verifier   *gooidc.IDTokenVerifier
}

var _ ports.TokenVerifier = (*Verifier)(nil)

// DiscoveryDocument represents the subset of the OIDC discovery document go-oidc reads.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewVerifier performs provider discovery once and returns a ready verifier.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	return &Verifier{
		httpClient: httpClient,
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Verify checks the token signature, issuer, audience and expiry and maps its claims.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domainauth.Principal{}, errors.New("token is required")
	}
	// Key set refreshes go through the configured client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("verify token: %w", err)
	}
	var c tokenClaims
	if err := tok.Claims(&c); err != nil {
		return domainauth.Principal{}, fmt.Errorf("parse token claims: %w", err)
	}
	p := mapClaims(c)
	if p.Subject == "" {
		p.Subject = tok.Subject
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = tok.Expiry
	}
	return p, nil
}

// tokenClaims covers standard OIDC claims plus the AD/ADFS shape.
type tokenClaims struct {
	Sub               string `json:"sub"`
	SamAccountName    string `json:"samaccountname"`
	Email             string `json:"email"`
	Mail              string `json:"mail"`
	PreferredUsername string `json:"preferred_username"`
	ExpiresAt         int64  `json:"exp"`
}

func mapClaims(c tokenClaims) domainauth.Principal {
	p := domainauth.Principal{
		Subject: firstNonEmpty(c.SamAccountName, c.Sub),
		Email:   firstNonEmpty(c.Email, c.Mail, c.PreferredUsername),
		Method:  domainauth.MethodBearer,
	}
	if c.ExpiresAt > 0 {
		p.ExpiresAt = time.Unix(c.ExpiresAt, 0).UTC()
	}
	return p
}

func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, ".well-known/openid-configuration")
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
