package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/oidc"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/ports"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth       config.AuthConfig
	HTTPClient *http.Client // Optional: used for OIDC discovery and key fetches
	Logger     *slog.Logger
}

// BuildAuthService creates the API authenticator. With neither an API key nor an OIDC
// issuer configured the returned service accepts every request.
// An OIDC issuer that cannot be discovered is a startup error rather than a silently open API.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var verifier ports.TokenVerifier
	if cfg.Auth.OIDC.Enabled() {
		v, err := oidc.NewVerifier(ctx, oidc.VerifierConfig{
			DiscoveryURL: cfg.Auth.OIDC.DiscoveryURL(),
			ClientID:     cfg.Auth.OIDC.ClientID,
			HTTPClient:   cfg.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc verifier: %w", err)
		}
		verifier = v
	} else if cfg.Auth.OIDC.Issuer != "" {
		logger.Warn("AUTH_OIDC_ISSUER set without AUTH_OIDC_CLIENT_ID; bearer tokens disabled")
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		APIKey:   cfg.Auth.APIKey,
		Verifier: verifier,
	})
	if !svc.Required() {
		logger.Warn("API authentication disabled: no API_KEY or OIDC issuer configured")
	}
	return svc, nil
}
