package config

import (
	"fmt"
	"strings"
	"time"
)

// ResearchProviderKind selects the research backend.
type ResearchProviderKind string

const (
	// ResearchProviderGemini calls Google Gemini through the genai SDK.
	ResearchProviderGemini ResearchProviderKind = "gemini"
	// ResearchProviderHTTP calls a generic JSON-over-HTTP completion endpoint.
	ResearchProviderHTTP ResearchProviderKind = "http"
)

// UnmarshalText implements encoding.TextUnmarshaler for ResearchProviderKind.
func (k *ResearchProviderKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch ResearchProviderKind(v) {
	case ResearchProviderGemini, ResearchProviderHTTP:
		*k = ResearchProviderKind(v)
		return nil
	default:
		return fmt.Errorf("invalid ResearchProviderKind: %q (valid options: gemini, http)", v)
	}
}

// ResearchConfig configures the provider and pipeline deadlines.
type ResearchConfig struct {
	Provider ResearchProviderKind `env:"RESEARCH_PROVIDER" envDefault:"gemini"`
	Model    string               `env:"RESEARCH_MODEL"    envDefault:"gemini-2.0-flash"`

	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string `env:"GEMINI_AUTH_API_KEY"`

	// AttemptTimeout cancels one pipeline attempt. The job lease is derived from it.
	AttemptTimeout time.Duration `env:"RESEARCH_ATTEMPT_TIMEOUT" envDefault:"2m"`

	// TTL limits how old stored research may be and still count as existing. Zero disables expiry.
	TTL time.Duration `env:"RESEARCH_TTL" envDefault:"0s"`

	// PromptsFile overrides the built-in prompt catalog.
	PromptsFile string `env:"RESEARCH_PROMPTS_FILE"`

	HTTP ResearchHTTPConfig `envPrefix:"RESEARCH_HTTP_"`
}

// ResearchHTTPConfig configures the generic HTTP provider.
type ResearchHTTPConfig struct {
	Endpoint string `env:"ENDPOINT"`
	// BodyTemplate is a text/template rendered with .Prompt and .Model.
	BodyTemplate string `env:"BODY_TEMPLATE" envDefault:"{\"model\":{{json .Model}},\"messages\":[{\"role\":\"user\",\"content\":{{json .Prompt}}}]}"`
	// TextPath is a JMESPath expression selecting the answer text in the response body.
	TextPath     string        `env:"TEXT_PATH"     envDefault:"choices[0].message.content"`
	HeaderName   string        `env:"HEADER_NAME"   envDefault:"Authorization"`
	HeaderValue  string        `env:"HEADER_VALUE"`
	TokenURL     string        `env:"TOKEN_URL"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	Scopes       []string      `env:"SCOPES"        envSeparator:","`
	Timeout      time.Duration `env:"TIMEOUT"       envDefault:"60s"`
}

// UsesClientCredentials reports whether requests carry an OAuth2 client-credentials token.
func (c ResearchHTTPConfig) UsesClientCredentials() bool {
	return c.TokenURL != "" && c.ClientID != ""
}

// Sanitize applies guardrails to research configuration values.
func (r *ResearchConfig) Sanitize() {
	if r.Provider == "" {
		r.Provider = ResearchProviderGemini
	}
	r.Model = strings.TrimSpace(r.Model)
	if r.Model == "" {
		r.Model = "gemini-2.0-flash"
	}
	r.GeminiAPIKey = strings.TrimSpace(r.GeminiAPIKey)
	if r.AttemptTimeout < 5*time.Second {
		r.AttemptTimeout = 5 * time.Second
	}
	if r.TTL < 0 {
		r.TTL = 0
	}
	r.HTTP.Endpoint = strings.TrimSpace(r.HTTP.Endpoint)
	if r.HTTP.Timeout <= 0 || r.HTTP.Timeout > r.AttemptTimeout {
		r.HTTP.Timeout = r.AttemptTimeout
	}
}
