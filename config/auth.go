package config

import "strings"

const wellKnownSuffix = "/.well-known/openid-configuration"

// OIDCConfig configures bearer token verification.
type OIDCConfig struct {
	Issuer   string `env:"ISSUER"`
	ClientID string `env:"CLIENT_ID"`
}

// DiscoveryURL returns the provider's discovery document URL.
func (c OIDCConfig) DiscoveryURL() string {
	issuer := strings.TrimRight(c.Issuer, "/")
	if issuer == "" || strings.HasSuffix(issuer, wellKnownSuffix) {
		return issuer
	}
	return issuer + wellKnownSuffix
}

// Enabled reports whether both the issuer and the audience are configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

// AuthConfig groups all authentication-related configuration.
// With neither an API key nor an OIDC issuer configured the API is open.
type AuthConfig struct {
	// APIKey is compared with the x-api-key header.
	APIKey string `env:"API_KEY"`

	// OIDC configuration for bearer tokens.
	OIDC OIDCConfig `envPrefix:"AUTH_OIDC_"`
}

// Sanitize trims whitespace from credentials.
func (a *AuthConfig) Sanitize() {
	a.APIKey = strings.TrimSpace(a.APIKey)
	a.OIDC.Issuer = strings.TrimSpace(a.OIDC.Issuer)
	a.OIDC.ClientID = strings.TrimSpace(a.OIDC.ClientID)
}

// Required reports whether /api routes must authenticate callers.
func (a AuthConfig) Required() bool {
	return a.APIKey != "" || a.OIDC.Enabled()
}
